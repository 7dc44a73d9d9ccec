package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/patentdraft/internal/config"
	"github.com/dgallion1/patentdraft/internal/generate"
	"github.com/dgallion1/patentdraft/internal/metrics"
	"github.com/dgallion1/patentdraft/internal/pipeline"
)

const testKey = "secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		DraftAPIKey:     testKey,
		WorkerCount:     1,
		MaxQueueSize:    8,
		MaxUploadBytes:  1 << 20,
		JobTTL:          time.Hour,
		TopK:            3,
		MaxClaimQueries: 2,
	}
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, generate.TemplateGenerator{}, nil, nil, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, nil, metrics.NewCollector("pgtree"), log, cfg)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func waitFinished(t *testing.T, s *Server, jobID string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/drafts/"+jobID+"/status", nil))
		status, _ := decode(t, rec)["status"].(string)
		if status == "completed" || status == "failed" {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", jobID)
	return ""
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("expected healthy response, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/drafts/x/status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/drafts/x/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if rec := do(t, s, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestSubmitJSONDraft_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	body := `{"id":1,"title":"Sensor","children":[{"id":"1.1","title":"权利要求1","content_guideline":"describe the sensor","children":[]}]}`
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/drafts", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	jobID, _ := out["job_id"].(string)
	if jobID == "" || out["poll_url"] != "/api/drafts/"+jobID+"/status" {
		t.Fatalf("unexpected submit response: %v", out)
	}

	if status := waitFinished(t, s, jobID); status != "completed" {
		t.Fatalf("expected completed, got %s", status)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/drafts/"+jobID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	tree := decode(t, rec)["tree"].(map[string]any)
	child := tree["children"].([]any)[0].(map[string]any)
	if child["status"] != "approved_by_examiner" {
		t.Errorf("expected claim approved without knowledge source, got %v", child["status"])
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/drafts/"+jobID+"/report", nil))
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") || !strings.Contains(rec.Body.String(), "## 权利要求1") {
		t.Errorf("unexpected report: %s", rec.Body.String())
	}
}

func TestSubmitDraft_Malformed(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/drafts", strings.NewReader(`{"id":"1","title":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if msg, _ := decode(t, rec)["error"].(string); !strings.Contains(msg, "malformed node") {
		t.Errorf("expected malformed node error, got %q", msg)
	}
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, content)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestSubmitOutlineFile(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "file", map[string]string{"outline.md": "# Sensor\n\n## Abstract\n\nSummarise.\n"})
	req := httptest.NewRequest(http.MethodPost, "/api/drafts", body)
	req.Header.Set("Content-Type", ctype)
	rec := do(t, s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["title"] != "Sensor" || out["nodes"] != float64(2) {
		t.Errorf("unexpected submit response: %v", out)
	}
}

func TestSubmitOutlineFile_Unsupported(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "file", map[string]string{"outline.pdf": "%PDF"})
	req := httptest.NewRequest(http.MethodPost, "/api/drafts", body)
	req.Header.Set("Content-Type", ctype)
	if rec := do(t, s, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBatchSubmit(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartBody(t, "files", map[string]string{
		"a.txt": "Sensor\n  Claims: claim it\n",
		"b.doc": "nope",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/drafts/batch", body)
	req.Header.Set("Content-Type", ctype)
	rec := do(t, s, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	jobs := decode(t, rec)["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(jobs))
	}
	accepted, rejected := 0, 0
	for _, j := range jobs {
		if _, ok := j.(map[string]any)["error"]; ok {
			rejected++
		} else {
			accepted++
		}
	}
	if accepted != 1 || rejected != 1 {
		t.Errorf("expected 1 accepted and 1 rejected, got %d and %d", accepted, rejected)
	}
}

func TestGetDraft_NotFound(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/drafts/missing", "/api/drafts/missing/status", "/api/drafts/missing/report"} {
		if rec := do(t, s, httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestLLMStats_UnavailableWithoutClaude(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `pgtree_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("expected recorded health request in metrics output")
	}
}
