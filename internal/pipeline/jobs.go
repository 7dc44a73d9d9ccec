package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/patentdraft/internal/pgtree"
	"github.com/oklog/ulid/v2"
)

// JobStatus represents the state of a drafting job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusWriting   JobStatus = "writing"
	StatusExamining JobStatus = "examining"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Finished reports whether the job will not change again.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one draft through writing and examination. The tree is owned
// by the worker processing the job until the job finishes.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	tree   *pgtree.Tree
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalNodes    int      `json:"total_nodes"`
	NodesWritten  int      `json:"nodes_written"`
	NodesExamined int      `json:"nodes_examined"`
	Revisions     int      `json:"revisions"`
	Errors        []string `json:"errors"`
}

// NewJob wraps a tree in a queued job with a fresh ULID.
func NewJob(tree *pgtree.Tree, filename string) *Job {
	now := time.Now()
	j := &Job{
		ID:        ulid.Make().String(),
		Filename:  filename,
		Title:     tree.Node(tree.Root()).Title,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		tree:      tree,
	}
	j.Progress.TotalNodes = tree.Len()
	if data, err := json.Marshal(tree); err == nil {
		j.ContentHash = ContentHashHex(data)
	}
	return j
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Finished() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrWritten counts one written section.
func (j *Job) IncrWritten() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.NodesWritten++
	j.UpdatedAt = time.Now()
}

// IncrExamined counts one examined section and whether it needs revision.
func (j *Job) IncrExamined(revision bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.NodesExamined++
	if revision {
		j.Progress.Revisions++
	}
	j.UpdatedAt = time.Now()
}

// Tree returns a copy of the draft once the job has finished. While the job
// is running the tree belongs to its worker and ok is false.
func (j *Job) Tree() (tree *pgtree.Tree, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.Status.Finished() || j.tree == nil {
		return nil, false
	}
	return j.tree.Clone(), true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		Title:       j.Title,
		Status:      j.Status,
		Phase:       j.Phase,
		Progress:    p,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
