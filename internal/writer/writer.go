package writer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/patentdraft/internal/generate"
	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/dgallion1/patentdraft/internal/retry"
	"github.com/dgallion1/patentdraft/internal/segment"
)

// Writer fills pending draft sections with generated content.
type Writer struct {
	gen    generate.Generator
	log    *slog.Logger
	policy retry.Policy

	onWritten    func(pgtree.Node)
	onGeneration func(time.Duration, error)
}

// Option customizes a Writer.
type Option func(*Writer)

// WithRetryPolicy overrides how transient generator failures are retried.
func WithRetryPolicy(p retry.Policy) Option {
	return func(w *Writer) { w.policy = p }
}

// OnWritten registers a hook called after each section is completed.
func OnWritten(fn func(pgtree.Node)) Option {
	return func(w *Writer) { w.onWritten = fn }
}

// OnGeneration registers a hook called after each generator attempt sequence
// with its duration and outcome.
func OnGeneration(fn func(time.Duration, error)) Option {
	return func(w *Writer) { w.onGeneration = fn }
}

func New(gen generate.Generator, log *slog.Logger, opts ...Option) *Writer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := &Writer{gen: gen, log: log}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Populate walks the tree in pre-order and writes every pending node that
// carries a content guideline. Other nodes are left untouched, but their
// children are still visited. The same tree is returned.
//
// The first failure stops the walk with a *pgtree.GenerationError. The failing
// node stays in_progress; nodes written before it keep their content.
func (w *Writer) Populate(ctx context.Context, tree *pgtree.Tree) (*pgtree.Tree, error) {
	err := tree.Walk(func(i pgtree.Index, path []pgtree.Index) error {
		n := tree.Node(i)
		if n.Status != pgtree.StatusPending || n.ContentGuideline == "" {
			return nil
		}
		return w.writeNode(ctx, tree, i, path)
	})
	return tree, err
}

func (w *Writer) writeNode(ctx context.Context, tree *pgtree.Tree, i pgtree.Index, path []pgtree.Index) error {
	n := tree.Node(i)
	log := w.log.With("node_id", n.ID, "title", n.Title)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tree.BeginWriting(i); err != nil {
		return err
	}

	req := generate.Request{
		NodeID:     n.ID,
		Title:      n.Title,
		Guideline:  n.ContentGuideline,
		Breadcrumb: tree.Titles(path),
	}
	start := time.Now()
	content, err := retry.Do(ctx, w.policy, log, func(ctx context.Context) (string, error) {
		return w.gen.Generate(ctx, req)
	})
	if err == nil && strings.TrimSpace(content) == "" {
		err = generate.ErrEmptyContent
	}
	if w.onGeneration != nil {
		w.onGeneration(time.Since(start), err)
	}
	if err != nil {
		log.Error("generation failed", "error", err)
		return &pgtree.GenerationError{NodeID: n.ID, Title: n.Title, Err: err}
	}

	if err := tree.CompleteWriting(i, content); err != nil {
		return fmt.Errorf("complete node %s: %w", n.ID, err)
	}
	log.Info("section written", "chars", len(content), "tokens", segment.EstimateTokens(content))

	if w.onWritten != nil {
		w.onWritten(tree.Node(i))
	}
	return nil
}
