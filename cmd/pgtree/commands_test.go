package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/patentdraft/internal/outline"
	"github.com/dgallion1/patentdraft/internal/pgtree"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("KNOWLEDGE_URL", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_WritesAndExamines(t *testing.T) {
	src := writeFile(t, "outline.md", "# Sensor\n\n## 权利要求1\n\nDescribe the optical sensor.\n\n## Background\n\nExisting water sensors.\n")
	corpus := writeFile(t, "corpus.yaml", "- id: CN101\n  title: Optical sensor patent\n  text: draft content optical sensor guideline\n")
	out := filepath.Join(t.TempDir(), "tree.json")

	stdout, err := execute(t, "run", src, "--corpus", corpus, "-o", out)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, stdout)
	}
	for _, want := range []string{"权利要求1 (ID: 1, needs_revision)", "Background (ID: 2, approved_by_examiner)", "3 sections:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}

	tree, err := outline.ReadFile(out)
	if err != nil {
		t.Fatalf("read output tree: %v", err)
	}
	if got := tree.Counts()[pgtree.StatusNeedsRevision]; got != 1 {
		t.Errorf("expected 1 section needing revision in saved tree, got %d", got)
	}
}

func TestWriteThenShowReport(t *testing.T) {
	src := writeFile(t, "outline.txt", "Sensor\n  Abstract: summarise the sensor\n")
	out := filepath.Join(t.TempDir(), "tree.json")
	if _, err := execute(t, "write", src, "-o", out); err != nil {
		t.Fatalf("write: %v", err)
	}

	stdout, err := execute(t, "show", out, "--report")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(stdout, "## Abstract") || !strings.Contains(stdout, "`completed`") {
		t.Errorf("unexpected report:\n%s", stdout)
	}
}

func TestExamine_MissingFile(t *testing.T) {
	if _, err := execute(t, "examine", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRun_RejectsMinSimilarityOutOfRange(t *testing.T) {
	src := writeFile(t, "outline.txt", "Sensor\n  Abstract: summarise the sensor\n")
	for _, v := range []string{"-0.1", "1.5"} {
		if _, err := execute(t, "run", src, "--min-similarity="+v); err == nil || !strings.Contains(err.Error(), "min-similarity") {
			t.Errorf("expected range error for %s, got %v", v, err)
		}
	}
}
