package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mashup/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldRunDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldRun := filepath.Join(tmpDir, "run-old")
	recentRun := filepath.Join(tmpDir, "run-recent")
	oldOther := filepath.Join(tmpDir, "keep-me")
	for _, dir := range []string{oldRun, recentRun, oldOther} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, dir := range []string{oldRun, oldOther} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatalf("set old time: %v", err)
		}
	}

	result := CleanStale(tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldRun {
		t.Fatalf("expected only %s removed, got %v", oldRun, result.Removed)
	}
	if _, err := os.Stat(oldRun); !os.IsNotExist(err) {
		t.Error("old run directory should have been removed")
	}
	for _, dir := range []string{recentRun, oldOther} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s should still exist", dir)
		}
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "run-file.mp3")
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(tmpDir, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %d", len(result.Removed))
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should not have been removed")
	}
}

func TestInspect(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "a.mp3"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "run-1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "run-1", "b.mp3"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := Inspect(tmpDir)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Files != 1 || info.Runs != 1 || info.Size != 8 {
		t.Fatalf("unexpected info %+v", info)
	}

	missing, err := Inspect(filepath.Join(tmpDir, "missing"))
	if err != nil || missing.Files != 0 || missing.Size != 0 {
		t.Fatalf("expected zero value for missing root, got %+v err=%v", missing, err)
	}
}
