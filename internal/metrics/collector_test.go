package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("pgtree")
	c.RecordWritten()
	c.RecordWritten()
	c.RecordExamined("needs_revision")
	c.RecordExamined("approved_by_examiner")
	c.RecordExamined("needs_revision")
	c.RecordJob("completed")

	if got := testutil.ToFloat64(c.nodesWritten); got != 2 {
		t.Errorf("expected 2 written, got %v", got)
	}
	if got := testutil.ToFloat64(c.nodesExamined.WithLabelValues("needs_revision")); got != 2 {
		t.Errorf("expected 2 revisions, got %v", got)
	}
	if got := testutil.ToFloat64(c.jobsTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("expected 1 completed job, got %v", got)
	}
}

func TestCollector_DurationsByOutcome(t *testing.T) {
	c := NewCollector("pgtree")
	c.RecordGeneration(time.Second, nil)
	c.RecordRetrieval(10*time.Millisecond, errors.New("down"))

	if got := testutil.CollectAndCount(c.generationDuration); got != 1 {
		t.Errorf("expected 1 generation series, got %d", got)
	}
	if got := testutil.CollectAndCount(c.retrievalDuration); got != 1 {
		t.Errorf("expected 1 retrieval series, got %d", got)
	}
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("pgtree")
	b := NewCollector("pgtree")
	a.RecordWritten()
	if got := testutil.ToFloat64(b.nodesWritten); got != 0 {
		t.Errorf("expected separate registries, got %v", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("pgtree")
	c.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	c.SetQueueDepth(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{"pgtree_http_requests_total", "pgtree_job_queue_depth 3"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}
