package app

import (
	"os"
	"path/filepath"
	"testing"

	"chroni/internal/config"
)

func newTestApp(t *testing.T, operation string, parameters ...string) *App {
	t.Helper()

	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.Database.Type = "memory"

	a, err := NewApp(cfg, operation, parameters...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestAppTrackScanRestore(t *testing.T) {
	a := newTestApp(t, "Track")

	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeFile(t, file, "first\n")

	path, tracked, err := a.Track(file)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if !tracked {
		t.Error("expected Track to report newly tracked")
	}
	if path != file {
		t.Errorf("resolved path = %q, want %q", path, file)
	}

	changed, err := a.ScanAll()
	if err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}
	if len(changed) != 1 {
		t.Fatalf("expected one change, got %v", changed)
	}

	writeFile(t, file, "second\n")
	if _, err := a.ScanAll(); err != nil {
		t.Fatalf("second ScanAll failed: %v", err)
	}

	history, err := a.History(file, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(history))
	}

	if _, err := a.Restore(file, 1); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if string(data) != "first\n" {
		t.Errorf("restored content = %q, want %q", data, "first\n")
	}
}

func TestAppTrackMissingPath(t *testing.T) {
	a := newTestApp(t, "Track")

	if _, _, err := a.Track(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected an error for a nonexistent path")
	}
}

func TestAppShowLatest(t *testing.T) {
	a := newTestApp(t, "Show")

	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, "content\n")

	if _, _, err := a.Track(file); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if _, err := a.ScanAll(); err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}

	info, err := a.Show(file, 0)
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if info == nil || info.Content == nil || *info.Content != "content\n" {
		t.Fatalf("unexpected Show result: %+v", info)
	}
}

func TestAppOperationsAreRecorded(t *testing.T) {
	a := newTestApp(t, "ScanAll")

	if _, err := a.ScanAll(); err != nil {
		t.Fatalf("ScanAll failed: %v", err)
	}

	ops, err := a.Operations(0)
	if err != nil {
		t.Fatalf("Operations failed: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(ops))
	}
	if ops[0].Operation != "ScanAll" {
		t.Errorf("Operation = %q, want ScanAll", ops[0].Operation)
	}
	// Still running: Close has not finished it yet.
	if ops[0].Status != "running" {
		t.Errorf("Status = %q, want running", ops[0].Status)
	}
}
