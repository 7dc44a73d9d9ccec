package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" || cfg.TopK != 3 || cfg.MaxClaimQueries != 2 || cfg.MinSimilarity != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job ttl, got %v", cfg.JobTTL)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgtree.yaml")
	data := "port: \"9000\"\ntop_k: 5\nmin_similarity: 0.4\njob_ttl: 2h\nknowledge_url: http://kb:8080\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TOP_K", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port from file, got %q", cfg.Port)
	}
	if cfg.TopK != 7 {
		t.Errorf("expected env to override top_k, got %d", cfg.TopK)
	}
	if cfg.MinSimilarity != 0.4 || cfg.JobTTL != 2*time.Hour || cfg.KnowledgeURL != "http://kb:8080" {
		t.Errorf("unexpected file values: %+v", cfg)
	}
}

func TestLoad_ClampsInvalidNumbers(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("TOP_K", "0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 4 || cfg.TopK != 3 {
		t.Errorf("expected clamped values, got workers=%d top_k=%d", cfg.WorkerCount, cfg.TopK)
	}
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing api key to fail")
	}
	cfg.DraftAPIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.MinSimilarity = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected out-of-range similarity to fail")
	}
	cfg.MinSimilarity = 0
	cfg.KnowledgeURL, cfg.CorpusFile = "http://kb", "corpus.yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected both knowledge sources to fail")
	}
}
