package chroni

import (
	"time"

	"chroni/internal/model"
)

// Database provides an interface for metadata and version storage.
// All methods should be implemented with appropriate transaction handling.
type Database interface {
	// Tracked path operations

	// UpsertTrackedPath registers a path for tracking, reactivating it if it
	// was previously untracked.
	UpsertTrackedPath(path string) error

	// DeactivateTrackedPath stops tracking a path but keeps its history.
	DeactivateTrackedPath(path string) error

	// IsActiveTracked reports whether a path is currently tracked.
	IsActiveTracked(path string) (bool, error)

	// PathKnown reports whether a path has a tracking record at all,
	// active or not.
	PathKnown(path string) (bool, error)

	// ListActiveTracked returns all actively tracked paths.
	ListActiveTracked() ([]string, error)

	// PurgePath atomically removes a path's tracking record, every version,
	// and every snapshot entry referencing it.
	PurgePath(path string) error

	// Version operations

	// LatestVersion returns the newest version of a path, or nil if the path
	// has no history.
	LatestVersion(path string) (*model.Version, error)

	// GetVersion returns one specific version, or nil if it does not exist.
	GetVersion(path string, number int64) (*model.Version, error)

	// ListVersions returns versions newest first. limit <= 0 means all.
	ListVersions(path string, limit int) ([]*model.Version, error)

	// VersionsUpTo returns versions 1..number oldest first.
	VersionsUpTo(path string, number int64) ([]*model.Version, error)

	// AppendVersion writes the next version of a path and returns its
	// number. Number allocation (read latest, insert next) must be a single
	// atomic step so repeated scans never duplicate or skip a number.
	AppendVersion(path string, diff *string, content string, ts time.Time) (int64, error)

	// DropVersionContent clears the stored full content of one version,
	// leaving its diff in place. Version 1 (no diff) is never cleared.
	// Returns whether a row was changed.
	DropVersionContent(path string, number int64) (bool, error)

	// Snapshot operations

	SnapshotExists(name string) (bool, error)

	// CreateSnapshot writes the snapshot row and all its entries in one
	// transaction.
	CreateSnapshot(snap *model.Snapshot, entries []model.SnapshotEntry) error

	// ListSnapshots returns all snapshots, newest first.
	ListSnapshots() ([]*model.Snapshot, error)

	// SnapshotEntries returns the per-path version pins of a snapshot.
	SnapshotEntries(name string) ([]model.SnapshotEntry, error)

	// Operation log

	CreateOperation(op *model.Operation) error
	FinishOperation(id, status string, finishedAt time.Time) error
	ListOperations(limit int) ([]*model.Operation, error)

	// Close closes the database connection.
	Close() error
}
