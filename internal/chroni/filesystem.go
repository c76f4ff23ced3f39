package chroni

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real
// filesystem.
type FilesystemManager interface {
	// Resolve expands and absolutizes a raw user-supplied path.
	// The path does not have to exist.
	Resolve(rawPath string) (string, error)

	// IsFile reports whether path exists and is a regular file.
	IsFile(path string) bool

	// IsDir reports whether path exists and is a directory.
	IsDir(path string) bool

	// IsTextFile reports whether path is a regular file whose contents look
	// like text.
	IsTextFile(path string) bool

	// ReadText reads a file and returns its contents as text.
	// Fails with fs.NotTextError when the contents cannot be decoded.
	ReadText(path string) (string, error)

	// WriteText writes content to path, creating parent directories as
	// needed.
	WriteText(path, content string) error

	// FindTextFiles returns all text files under dir recursively, excluding
	// configured directory names. Results are sorted.
	FindTextFiles(dir string) ([]string, error)
}
