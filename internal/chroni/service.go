package chroni

// DiffCodec encodes the difference between two text states and replays a
// stored diff against a base state.
type DiffCodec interface {
	// Encode produces a textual diff transforming old into new.
	// Identical inputs yield an empty diff.
	Encode(old, new string) string

	// Apply replays a diff against old and returns the resulting text.
	// Empty diffs are treated as "no change".
	Apply(old, diffText string) (string, error)
}

// Service is the orchestration layer that coordinates storage, the diff
// codec, and the filesystem to perform the high-level versioning operations
// needed by the CLI.
type Service struct {
	database Database
	fsmgr    FilesystemManager
	codec    DiffCodec
	logger   Logger
	clock    Clock
}

// NewService creates a new Service with the provided dependencies.
func NewService(database Database, fsmgr FilesystemManager, codec DiffCodec, logger Logger, clock Clock) *Service {
	return &Service{
		database: database,
		fsmgr:    fsmgr,
		codec:    codec,
		logger:   logger,
		clock:    clock,
	}
}
