package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig("/data/chroni")

	if cfg.BaseDir != "/data/chroni" {
		t.Errorf("BaseDir = %q", cfg.BaseDir)
	}
	if cfg.LogDir != filepath.Join("/data/chroni", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Database.DataDir != "/data/chroni" {
		t.Errorf("Database.DataDir = %q", cfg.Database.DataDir)
	}
	if len(cfg.Filesystem.Exclude) == 0 {
		t.Error("expected default exclude list")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	cfg := NewConfig("/data/chroni")
	cfg.Database.Type = "memory"
	cfg.Filesystem.Exclude = []string{".git", "vendor"}

	m := &Manager{}
	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.BaseDir != cfg.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, cfg.BaseDir)
	}
	if got.Database.Type != "memory" {
		t.Errorf("Database.Type = %q, want memory", got.Database.Type)
	}
	if len(got.Filesystem.Exclude) != 2 || got.Filesystem.Exclude[1] != "vendor" {
		t.Errorf("Exclude = %v", got.Filesystem.Exclude)
	}
}

func TestReadInvalidToml(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("not [valid toml")); err == nil {
		t.Error("expected an error for invalid TOML")
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "chroni.toml")
	cfg := NewConfig(dir)

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile failed: %v", err)
	}
	if got.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
	}

	// A second Init must refuse to overwrite.
	if err := Init(path, cfg); err == nil {
		t.Error("expected Init to fail when the file exists")
	}
}

func TestReadFromFileMissing(t *testing.T) {
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
