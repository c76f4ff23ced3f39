// Package fs is the real filesystem implementation of FilesystemManager.
package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"chroni/internal/chroni"
)

// textProbeSize is how many leading bytes are inspected when deciding
// whether a file is text.
const textProbeSize = 1024

// NotTextError reports a file whose contents cannot be decoded as text.
type NotTextError struct {
	Path string
}

func (e *NotTextError) Error() string {
	return fmt.Sprintf("file is not decodable as text: %s", e.Path)
}

// OSFilesystemManager performs actual filesystem operations using the os
// package. Directory names in exclude are skipped during discovery.
type OSFilesystemManager struct {
	exclude map[string]bool
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem.
func NewOSFilesystemManager(exclude []string) *OSFilesystemManager {
	m := &OSFilesystemManager{exclude: make(map[string]bool, len(exclude))}
	for _, name := range exclude {
		m.exclude[name] = true
	}
	return m
}

// Resolve expands a leading ~ and absolutizes the path.
// The path does not have to exist.
func (m *OSFilesystemManager) Resolve(rawPath string) (string, error) {
	path := rawPath
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return absPath, nil
}

func (m *OSFilesystemManager) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (m *OSFilesystemManager) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsTextFile probes the first bytes of a regular file: anything containing
// a NUL byte, or an invalid UTF-8 prefix, is treated as binary.
func (m *OSFilesystemManager) IsTextFile(path string) bool {
	if !m.IsFile(path) {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, textProbeSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Zero-length files read io.EOF with n == 0 and count as text.
		return errors.Is(err, io.EOF)
	}
	chunk := buf[:n]

	if bytes.IndexByte(chunk, 0) >= 0 {
		return false
	}

	// The probe may end mid-rune; drop the trailing partial sequence
	// before validating.
	for len(chunk) > 0 && !utf8.Valid(chunk) {
		r, _ := utf8.DecodeLastRune(chunk)
		if r != utf8.RuneError {
			break
		}
		chunk = chunk[:len(chunk)-1]
	}
	return utf8.Valid(chunk)
}

// ReadText reads a file as UTF-8 text, falling back to a Latin-1
// interpretation for legacy files. Files containing NUL bytes fail with
// NotTextError.
func (m *OSFilesystemManager) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return "", &NotTextError{Path: path}
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

// WriteText writes content to path, creating parent directories as needed.
func (m *OSFilesystemManager) WriteText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// FindTextFiles walks dir recursively and returns every text file, skipping
// excluded directory names. Results are sorted for determinism.
func (m *OSFilesystemManager) FindTextFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && m.exclude[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m.IsTextFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// decodeLatin1 maps each byte to the equivalent Unicode code point.
func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// Compile-time check that OSFilesystemManager implements the interface.
var _ chroni.FilesystemManager = (*OSFilesystemManager)(nil)
