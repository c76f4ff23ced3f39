package chroni

import (
	"fmt"

	"chroni/internal/model"
)

// SnapshotRestoreResult reports the outcome of restoring a snapshot.
// Entries that failed do not prevent the others from being attempted, and
// already-restored files stay restored.
type SnapshotRestoreResult struct {
	Restored []string
	Failed   map[string]error
}

// OK reports whether every entry restored successfully.
func (r *SnapshotRestoreResult) OK() bool { return len(r.Failed) == 0 }

// CreateSnapshot captures, for every actively tracked file, the version
// number current right now under the given name. Paths with no recorded
// version yet are skipped. The capture is a point-in-time read: later
// changes to a file never alter the snapshot. Returns the number of files
// captured.
func (s *Service) CreateSnapshot(name, note string) (int, error) {
	exists, err := s.database.SnapshotExists(name)
	if err != nil {
		return 0, fmt.Errorf("checking snapshot name: %w", err)
	}
	if exists {
		return 0, fmt.Errorf("snapshot %q: %w", name, ErrDuplicateSnapshot)
	}

	tracked, err := s.database.ListActiveTracked()
	if err != nil {
		return 0, fmt.Errorf("listing tracked paths: %w", err)
	}

	var entries []model.SnapshotEntry
	for _, path := range tracked {
		if !s.fsmgr.IsFile(path) {
			continue
		}
		latest, err := s.database.LatestVersion(path)
		if err != nil {
			return 0, fmt.Errorf("reading latest version of %s: %w", path, err)
		}
		if latest == nil {
			continue
		}
		entries = append(entries, model.SnapshotEntry{
			Snapshot: name,
			Path:     path,
			Version:  latest.Number,
		})
	}

	snap := &model.Snapshot{Name: name, Note: note, Timestamp: s.clock.Now()}
	if err := s.database.CreateSnapshot(snap, entries); err != nil {
		return 0, fmt.Errorf("creating snapshot: %w", err)
	}

	s.logger.Info("snapshot created", "name", name, "files", len(entries))
	return len(entries), nil
}

// ListSnapshots returns all snapshots, newest first.
func (s *Service) ListSnapshots() ([]*model.Snapshot, error) {
	return s.database.ListSnapshots()
}

// RestoreSnapshot restores every file in the snapshot to its recorded
// version. Each entry is attempted regardless of earlier failures; callers
// needing atomicity should snapshot the current state first.
// Fails with ErrNotFound when the name has no entries.
func (s *Service) RestoreSnapshot(name string) (*SnapshotRestoreResult, error) {
	entries, err := s.database.SnapshotEntries(name)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("snapshot %q: %w", name, ErrNotFound)
	}

	result := &SnapshotRestoreResult{Failed: make(map[string]error)}
	for _, entry := range entries {
		if err := s.RestoreFile(entry.Path, entry.Version); err != nil {
			s.logger.Error("snapshot entry failed", "snapshot", name, "path", entry.Path, "error", err)
			result.Failed[entry.Path] = err
			continue
		}
		result.Restored = append(result.Restored, entry.Path)
	}

	s.logger.Info("snapshot restored", "name", name,
		"restored", len(result.Restored), "failed", len(result.Failed))
	return result, nil
}
