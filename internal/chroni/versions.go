package chroni

import (
	"fmt"

	"chroni/internal/model"
)

// Materialize produces the full text of one historical version of path.
// When the stored row still carries full content that content is returned
// directly; otherwise the diff chain is replayed from the nearest older
// version whose content survives.
func (s *Service) Materialize(path string, number int64) (string, error) {
	v, err := s.database.GetVersion(path, number)
	if err != nil {
		return "", fmt.Errorf("reading version: %w", err)
	}
	if v == nil {
		return "", fmt.Errorf("version %d of %s: %w", number, path, ErrNotFound)
	}
	if v.Content != nil {
		return *v.Content, nil
	}
	return s.reconstruct(path, number)
}

// versionContent returns the full text of an already-loaded version,
// replaying the diff chain when its content was compacted away.
func (s *Service) versionContent(v *model.Version) (string, error) {
	if v.Content != nil {
		return *v.Content, nil
	}
	return s.reconstruct(v.Path, v.Number)
}

// reconstruct rebuilds a version's text by replaying diffs, starting from
// the newest version at or below number that still stores full content.
func (s *Service) reconstruct(path string, number int64) (string, error) {
	versions, err := s.database.VersionsUpTo(path, number)
	if err != nil {
		return "", fmt.Errorf("reading version chain: %w", err)
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("version %d of %s: %w", number, path, ErrNotFound)
	}

	start := -1
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].Content != nil {
			start = i
			break
		}
	}

	content := ""
	if start >= 0 {
		content = *versions[start].Content
	}
	for i := start + 1; i < len(versions); i++ {
		v := versions[i]
		if v.Diff == nil {
			// Version 1 with neither content nor diff: nothing to replay.
			continue
		}
		next, err := s.codec.Apply(content, *v.Diff)
		if err != nil {
			return "", fmt.Errorf("replaying diff for %s version %d: %w", path, v.Number, err)
		}
		content = next
	}

	s.logger.Debug("version reconstructed", "path", path, "version", number)
	return content, nil
}

// RestoreFile writes one historical version of path back to disk.
func (s *Service) RestoreFile(path string, number int64) error {
	content, err := s.Materialize(path, number)
	if err != nil {
		return err
	}
	if err := s.fsmgr.WriteText(path, content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.logger.Info("file restored", "path", path, "version", number)
	return nil
}

// Compact drops redundant stored content from old versions of path, keeping
// full content on version 1, on every keepEvery-th version, and on the
// latest version. Materializing a compacted version replays the diff chain.
// Returns the number of versions whose content was dropped.
func (s *Service) Compact(path string, keepEvery int64) (int, error) {
	if keepEvery < 2 {
		return 0, fmt.Errorf("keep interval must be at least 2, got %d", keepEvery)
	}

	latest, err := s.database.LatestVersion(path)
	if err != nil {
		return 0, fmt.Errorf("reading latest version: %w", err)
	}
	if latest == nil {
		return 0, nil
	}

	dropped := 0
	for n := int64(2); n < latest.Number; n++ {
		if n%keepEvery == 0 {
			continue
		}
		ok, err := s.database.DropVersionContent(path, n)
		if err != nil {
			return dropped, fmt.Errorf("dropping content of version %d: %w", n, err)
		}
		if ok {
			dropped++
		}
	}

	s.logger.Info("history compacted", "path", path, "dropped", dropped)
	return dropped, nil
}
