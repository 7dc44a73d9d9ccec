package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/patentdraft/internal/examiner"
	"github.com/dgallion1/patentdraft/internal/generate"
	"github.com/dgallion1/patentdraft/internal/knowledge"
	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/dgallion1/patentdraft/internal/writer"
)

// ExamPolicy holds the examiner settings applied to every job.
type ExamPolicy struct {
	TopK            int
	MaxClaimQueries int
	MinSimilarity   float64
}

// Worker processes a single draft job.
type Worker struct {
	gen    generate.Generator
	source knowledge.Source
	rec    Recorder
	log    *slog.Logger
	policy ExamPolicy
}

// NewWorker creates a worker. source may be nil to examine without
// retrieval; rec may be nil to skip metrics.
func NewWorker(gen generate.Generator, source knowledge.Source, rec Recorder, log *slog.Logger, policy ExamPolicy) *Worker {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worker{gen: gen, source: source, rec: rec, log: log, policy: policy}
}

// Process writes and then examines the job's draft.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "title", job.Title)
	tree := job.tree

	// Phase 1: Write
	job.SetStatus(StatusWriting, "writing")
	wr := writer.New(w.gen, log,
		writer.OnWritten(func(pgtree.Node) {
			job.IncrWritten()
			w.rec.RecordWritten()
		}),
		writer.OnGeneration(w.rec.RecordGeneration),
	)
	if _, err := wr.Populate(ctx, tree); err != nil {
		w.fail(log, job, "writing", err)
		return
	}

	// Phase 2: Examine
	job.SetStatus(StatusExamining, "examining")
	ex := examiner.New(w.source, log,
		examiner.WithTopK(w.policy.TopK),
		examiner.WithMaxClaimQueries(w.policy.MaxClaimQueries),
		examiner.WithMinSimilarity(w.policy.MinSimilarity),
		examiner.OnReviewed(func(n pgtree.Node) {
			job.IncrExamined(n.Status == pgtree.StatusNeedsRevision)
			w.rec.RecordExamined(string(n.Status))
		}),
		examiner.OnRetrieval(w.rec.RecordRetrieval),
	)
	if _, err := ex.ReviewDraft(ctx, tree); err != nil {
		w.fail(log, job, "examining", err)
		return
	}

	snap := job.Snapshot()
	log.Info("draft complete",
		"written", snap.Progress.NodesWritten,
		"examined", snap.Progress.NodesExamined,
		"revisions", snap.Progress.Revisions,
	)
	job.SetStatus(StatusCompleted, "done")
	w.rec.RecordJob(string(StatusCompleted))
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error(phase+" failed", "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	w.rec.RecordJob(string(StatusFailed))
}
