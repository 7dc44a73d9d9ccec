package examiner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/patentdraft/internal/knowledge"
	"github.com/dgallion1/patentdraft/internal/pgtree"
)

const (
	DefaultTopK            = 3
	DefaultMaxClaimQueries = 2
)

// Examiner reviews written sections against a knowledge source and records
// a verdict and feedback report on each.
type Examiner struct {
	source knowledge.Source
	log    *slog.Logger

	topK            int
	maxClaimQueries int
	minSimilarity   float64

	onReviewed  func(pgtree.Node)
	onRetrieval func(time.Duration, error)
}

// Option customizes an Examiner.
type Option func(*Examiner)

// WithTopK bounds how many references each query returns.
func WithTopK(k int) Option {
	return func(e *Examiner) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithMaxClaimQueries bounds how many claim sentences are searched.
func WithMaxClaimQueries(n int) Option {
	return func(e *Examiner) {
		if n > 0 {
			e.maxClaimQueries = n
		}
	}
}

// WithMinSimilarity sets the similarity at which a reference forces a
// revision. Zero means any reference does.
func WithMinSimilarity(s float64) Option {
	return func(e *Examiner) { e.minSimilarity = s }
}

// OnReviewed registers a hook called after each verdict.
func OnReviewed(fn func(pgtree.Node)) Option {
	return func(e *Examiner) { e.onReviewed = fn }
}

// OnRetrieval registers a hook called after each knowledge-source query.
func OnRetrieval(fn func(time.Duration, error)) Option {
	return func(e *Examiner) { e.onRetrieval = fn }
}

// New creates an Examiner. source may be nil, in which case retrieval is
// skipped and every reviewed section is judged on its own.
func New(source knowledge.Source, log *slog.Logger, opts ...Option) *Examiner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Examiner{
		source:          source,
		log:             log,
		topK:            DefaultTopK,
		maxClaimQueries: DefaultMaxClaimQueries,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReviewDraft walks the tree in pre-order and examines every completed node.
// The same tree is returned.
//
// A retrieval failure stops the walk with a *pgtree.RetrievalError. The
// failing node stays under_examination; earlier verdicts are kept.
func (e *Examiner) ReviewDraft(ctx context.Context, tree *pgtree.Tree) (*pgtree.Tree, error) {
	err := tree.Walk(func(i pgtree.Index, _ []pgtree.Index) error {
		n := tree.Node(i)
		if n.Status != pgtree.StatusCompleted || n.GeneratedContent == "" {
			return nil
		}
		return e.ReviewNode(ctx, tree, i)
	})
	return tree, err
}

// ReviewNode examines a single completed or needs_review node.
func (e *Examiner) ReviewNode(ctx context.Context, tree *pgtree.Tree, i pgtree.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tree.BeginExamination(i); err != nil {
		return err
	}
	n := tree.Node(i)
	log := e.log.With("node_id", n.ID, "title", n.Title)

	f, err := e.retrieve(ctx, n)
	if err != nil {
		log.Error("retrieval failed", "error", err)
		return err
	}

	verdict := f.verdict(e.minSimilarity)
	if err := tree.FinishExamination(i, verdict, buildReport(n, f, verdict)); err != nil {
		return fmt.Errorf("finish node %s: %w", n.ID, err)
	}
	log.Info("section examined", "verdict", verdict, "queries", len(f.evidence))

	if e.onReviewed != nil {
		e.onReviewed(tree.Node(i))
	}
	return nil
}

func (e *Examiner) retrieve(ctx context.Context, n pgtree.Node) (findings, error) {
	queries := IdentifyQueries(n.Title, n.GeneratedContent, e.maxClaimQueries)
	if len(queries) == 0 {
		return findings{skipNote: "no claim or technical solution statements to search"}, nil
	}

	f, err := e.search(ctx, n, queries)
	if errors.Is(err, pgtree.ErrRetrievalUnavailable) {
		e.log.Debug("retrieval skipped", "node_id", n.ID, "reason", err)
		return findings{skipNote: "knowledge source unavailable"}, nil
	}
	return f, err
}

func (e *Examiner) search(ctx context.Context, n pgtree.Node, queries []string) (findings, error) {
	if e.source == nil {
		return findings{}, pgtree.ErrRetrievalUnavailable
	}
	f := findings{ran: true}
	for _, q := range queries {
		start := time.Now()
		results, err := e.source.Search(ctx, q, e.topK)
		if e.onRetrieval != nil {
			e.onRetrieval(time.Since(start), err)
		}
		if err != nil {
			return findings{}, &pgtree.RetrievalError{NodeID: n.ID, Title: n.Title, Query: q, Err: err}
		}
		if len(results) > e.topK {
			results = results[:e.topK]
		}
		f.evidence = append(f.evidence, Evidence{Query: q, Results: results})
	}
	return f, nil
}
