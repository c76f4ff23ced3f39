package model

import "time"

// TrackedPath represents a path registered for version tracking.
// Untracking clears Active but keeps the row (and its history) around.
type TrackedPath struct {
	Path   string // Absolute path on host
	Active bool
}

// Version represents one recorded state of a tracked file.
// Numbers start at 1 and increase by one per path with no gaps.
type Version struct {
	Path      string
	Number    int64
	Diff      *string // nil for version 1
	Content   *string // full text; nil when compacted away
	Timestamp time.Time
}

// Snapshot is a named capture of per-path version numbers.
// Snapshots are immutable once created.
type Snapshot struct {
	Name      string
	Note      string
	Timestamp time.Time
}

// SnapshotEntry pins one path to the version that was current when the
// snapshot was taken.
type SnapshotEntry struct {
	Snapshot string
	Path     string
	Version  int64
}

// Operation records a single CLI invocation that mutated the database.
type Operation struct {
	ID         string // UUID
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time
	FinishedAt *time.Time
}
