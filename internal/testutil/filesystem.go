package testutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"chroni/internal/chroni"
)

// MockFilesystem is an in-memory chroni.FilesystemManager for tests.
// Files live in a flat map of absolute path to content; directories exist
// implicitly as prefixes of file paths or explicitly via AddDir.
type MockFilesystem struct {
	files map[string]string
	dirs  map[string]bool

	// ReadErrors and WriteErrors inject failures for specific paths.
	ReadErrors  map[string]error
	WriteErrors map[string]error

	// Written records every successful WriteText call, in order.
	Written []string
}

// NewMockFilesystem creates an empty mock filesystem.
func NewMockFilesystem() *MockFilesystem {
	return &MockFilesystem{
		files:       make(map[string]string),
		dirs:        make(map[string]bool),
		ReadErrors:  make(map[string]error),
		WriteErrors: make(map[string]error),
	}
}

// AddFile creates or replaces a file without recording it in Written.
func (m *MockFilesystem) AddFile(path, content string) {
	m.files[path] = content
}

// AddDir registers an (empty) directory.
func (m *MockFilesystem) AddDir(path string) {
	m.dirs[path] = true
}

// RemoveFile deletes a file, simulating removal from disk.
func (m *MockFilesystem) RemoveFile(path string) {
	delete(m.files, path)
}

// Content returns a file's current content and whether it exists.
func (m *MockFilesystem) Content(path string) (string, bool) {
	c, ok := m.files[path]
	return c, ok
}

func (m *MockFilesystem) Resolve(rawPath string) (string, error) {
	if filepath.IsAbs(rawPath) {
		return filepath.Clean(rawPath), nil
	}
	return filepath.Join("/", rawPath), nil
}

func (m *MockFilesystem) IsFile(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *MockFilesystem) IsDir(path string) bool {
	if m.dirs[path] {
		return true
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (m *MockFilesystem) IsTextFile(path string) bool {
	content, ok := m.files[path]
	if !ok {
		return false
	}
	return !strings.ContainsRune(content, 0)
}

func (m *MockFilesystem) ReadText(path string) (string, error) {
	if err := m.ReadErrors[path]; err != nil {
		return "", err
	}
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return content, nil
}

func (m *MockFilesystem) WriteText(path, content string) error {
	if err := m.WriteErrors[path]; err != nil {
		return err
	}
	m.files[path] = content
	m.Written = append(m.Written, path)
	return nil
}

func (m *MockFilesystem) FindTextFiles(dir string) ([]string, error) {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var paths []string
	for p := range m.files {
		if strings.HasPrefix(p, prefix) && m.IsTextFile(p) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Compile-time check that MockFilesystem implements FilesystemManager.
var _ chroni.FilesystemManager = (*MockFilesystem)(nil)
