package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/patentdraft/internal/retry"
)

func TestTemplateGenerator_Deterministic(t *testing.T) {
	req := Request{NodeID: "1", Title: "权利要求1", Guideline: "describe sensor"}
	a, err := TemplateGenerator{}.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := TemplateGenerator{}.Generate(context.Background(), req)
	if a != b {
		t.Errorf("expected identical output, got %q and %q", a, b)
	}
	for _, want := range []string{"权利要求1", "ID: 1", "describe sensor"} {
		if !strings.Contains(a, want) {
			t.Errorf("expected output to contain %q, got %q", want, a)
		}
	}
}

func TestTemplateGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (TemplateGenerator{}).Generate(ctx, Request{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestBuildSectionPrompt(t *testing.T) {
	p := BuildSectionPrompt(Request{
		NodeID:     "2.1",
		Title:      "Claim 1",
		Guideline:  "independent claim for the sensor",
		Breadcrumb: []string{"Water sensor", "Claims"},
	})
	for _, want := range []string{WritingPrompt, "Document: Water sensor > Claims", `Section: "Claim 1" (id 2.1)`, "Guideline: independent claim for the sensor"} {
		if !strings.Contains(p, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestClaudeGenerator_Success(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "key" {
			t.Errorf("expected api key header, got %q", r.Header.Get("x-api-key"))
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"content":[{"type":"text","text":"` + "```" + `\nA portable sensor.\n` + "```" + `"}]}`))
	}))
	defer srv.Close()

	g := NewClaudeGenerator("key", "test-model", WithBaseURL(srv.URL), WithMaxTokens(512))
	defer g.Close()

	text, err := g.Generate(context.Background(), Request{NodeID: "1", Title: "Claim 1", Guideline: "g"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A portable sensor." {
		t.Errorf("expected cleaned text, got %q", text)
	}
	if gotReq.Model != "test-model" || gotReq.MaxTokens != 512 {
		t.Errorf("unexpected request: model=%q max_tokens=%d", gotReq.Model, gotReq.MaxTokens)
	}
	if snap := g.Stats.Snapshot(); snap.Count != 1 || snap.Failures != 0 {
		t.Errorf("expected one successful sample, got %+v", snap)
	}
}

func TestClaudeGenerator_RetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit","message":"slow down"}}`))
	}))
	defer srv.Close()

	g := NewClaudeGenerator("key", "m", WithBaseURL(srv.URL))
	_, err := g.Generate(context.Background(), Request{Title: "x"})
	if !retry.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if snap := g.Stats.Snapshot(); snap.Failures != 1 {
		t.Errorf("expected one failure sample, got %+v", snap)
	}
}

func TestClaudeGenerator_PermanentErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, `{"error":{"type":"invalid_request","message":"bad"}}`},
		{"api error body", http.StatusOK, `{"error":{"type":"overloaded","message":"busy"}}`},
		{"empty content", http.StatusOK, `{"content":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewClaudeGenerator("key", "m", WithBaseURL(srv.URL))
			_, err := g.Generate(context.Background(), Request{Title: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if retry.IsRetryable(err) {
				t.Errorf("expected permanent error, got retryable %v", err)
			}
		})
	}
}
