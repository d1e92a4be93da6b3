package hhb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVerifyArtifactsAllPresent(t *testing.T) {
	dir := t.TempDir()
	for _, name := range DefaultArtifacts() {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}

	if err := VerifyArtifacts(dir, DefaultArtifacts()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyArtifactsCollectsAllProblems(t *testing.T) {
	dir := t.TempDir()
	// model.c is empty, model.params is missing, main.c is a directory.
	if err := os.WriteFile(filepath.Join(dir, "model.c"), nil, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "main.c"), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}

	err := VerifyArtifacts(dir, []string{"model.c", "model.params", "main.c"})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "3 artifact check(s) failed") {
		t.Fatalf("expected all problems collected, got %v", err)
	}
	if !strings.Contains(msg, "model.c: empty") ||
		!strings.Contains(msg, "model.params: missing") ||
		!strings.Contains(msg, "main.c: is a directory") {
		t.Fatalf("expected per-artifact detail, got %v", err)
	}
}

func TestVerifyArtifactsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere.params")
	if err := os.WriteFile(abs, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if err := VerifyArtifacts(t.TempDir(), []string{abs}); err != nil {
		t.Fatalf("absolute artifact path must be checked as given: %v", err)
	}
}
