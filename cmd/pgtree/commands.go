package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dgallion1/patentdraft/internal/examiner"
	"github.com/dgallion1/patentdraft/internal/generate"
	"github.com/dgallion1/patentdraft/internal/knowledge"
	"github.com/dgallion1/patentdraft/internal/logging"
	"github.com/dgallion1/patentdraft/internal/outline"
	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/dgallion1/patentdraft/internal/render"
	"github.com/dgallion1/patentdraft/internal/writer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type options struct {
	corpus        string
	knowledgeURL  string
	knowledgeKey  string
	minSimilarity float64
	topK          int
	maxClaims     int
	model         string
	output        string
	logLevel      string
	noColor       bool
	report        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pgtree",
		Short: "Write and examine patent drafts organised as a section tree",
		Long: `pgtree fills a patent outline with generated section drafts and reviews
them against prior-art references.

Outlines may be JSON or YAML trees, or markdown, HTML, DOCX, CSV and indented
text files. Set ANTHROPIC_API_KEY to generate with Claude; without it every
section gets a placeholder draft.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.corpus, "corpus", "", "reference corpus file (.json/.yaml) for examination")
	pf.StringVar(&opts.knowledgeURL, "knowledge-url", os.Getenv("KNOWLEDGE_URL"), "patent search service base URL")
	pf.StringVar(&opts.knowledgeKey, "knowledge-key", os.Getenv("KNOWLEDGE_API_KEY"), "patent search service API key")
	pf.Float64Var(&opts.minSimilarity, "min-similarity", 0, "similarity at which a reference forces revision")
	pf.IntVar(&opts.topK, "top-k", examiner.DefaultTopK, "references retrieved per query")
	pf.IntVar(&opts.maxClaims, "max-claims", examiner.DefaultMaxClaimQueries, "claim sentences searched per section")
	pf.StringVar(&opts.model, "model", "claude-sonnet-4-5-20250929", "Claude model for section generation")
	pf.StringVarP(&opts.output, "output", "o", "", "write the resulting tree as JSON to this file")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		&cobra.Command{
			Use:   "write <outline>",
			Short: "Generate content for every pending section",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, args[0], true, false)
			},
		},
		&cobra.Command{
			Use:   "examine <tree>",
			Short: "Examine every completed section against prior art",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, args[0], false, true)
			},
		},
		&cobra.Command{
			Use:   "run <outline>",
			Short: "Write and then examine a draft",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, args[0], true, true)
			},
		},
		opts.showCmd(),
	)
	return root
}

func (o *options) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <tree>",
		Short: "Print a draft's section statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := outline.ReadFile(args[0])
			if err != nil {
				return err
			}
			o.print(cmd.OutOrStdout(), tree)
			return nil
		},
	}
	cmd.Flags().BoolVar(&o.report, "report", false, "print the markdown review report instead")
	return cmd
}

func (o *options) run(cmd *cobra.Command, path string, write, examine bool) error {
	if o.minSimilarity < 0 || o.minSimilarity > 1 {
		return fmt.Errorf("--min-similarity must be within [0, 1], got %v", o.minSimilarity)
	}
	log, closer, err := logging.New(cmd.ErrOrStderr(), "", o.logLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	tree, err := outline.ReadFile(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = o.process(ctx, log, tree, write, examine)
	o.print(cmd.OutOrStdout(), tree)
	if o.output != "" {
		if werr := writeTree(o.output, tree); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func (o *options) process(ctx context.Context, log *slog.Logger, tree *pgtree.Tree, write, examine bool) error {
	if write {
		var gen generate.Generator = generate.TemplateGenerator{}
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			claude := generate.NewClaudeGenerator(key, o.model)
			defer claude.Close()
			gen = claude
		}
		if _, err := writer.New(gen, log).Populate(ctx, tree); err != nil {
			return err
		}
	}
	if examine {
		source, err := knowledge.Open(o.knowledgeURL, o.knowledgeKey, o.corpus, log)
		if err != nil {
			return err
		}
		ex := examiner.New(source, log,
			examiner.WithTopK(o.topK),
			examiner.WithMaxClaimQueries(o.maxClaims),
			examiner.WithMinSimilarity(o.minSimilarity),
		)
		if _, err := ex.ReviewDraft(ctx, tree); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) print(w io.Writer, tree *pgtree.Tree) {
	if o.report {
		fmt.Fprint(w, render.Markdown(tree))
		return
	}
	r := render.New(!o.noColor)
	fmt.Fprint(w, r.Tree(tree))
	fmt.Fprintln(w, r.Summary(tree))
}

func writeTree(path string, tree *pgtree.Tree) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
