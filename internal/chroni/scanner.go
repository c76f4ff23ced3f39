package chroni

import "fmt"

// ScanAll runs change detection over every actively tracked path and
// records a new version for each changed file. Unreadable files are skipped
// with a warning rather than aborting the pass. Returns the changed paths.
func (s *Service) ScanAll() ([]string, error) {
	tracked, err := s.database.ListActiveTracked()
	if err != nil {
		return nil, fmt.Errorf("listing tracked paths: %w", err)
	}

	var changed []string
	for _, path := range tracked {
		switch {
		case s.fsmgr.IsFile(path):
			ok, err := s.scanFile(path)
			if err != nil {
				s.logger.Warn("skipping unreadable file", "path", path, "error", err)
				continue
			}
			if ok {
				changed = append(changed, path)
			}

		case s.fsmgr.IsDir(path):
			files, err := s.fsmgr.FindTextFiles(path)
			if err != nil {
				s.logger.Warn("skipping unreadable directory", "path", path, "error", err)
				continue
			}
			for _, f := range files {
				active, err := s.database.IsActiveTracked(f)
				if err != nil {
					return changed, fmt.Errorf("checking tracking state: %w", err)
				}
				if !active {
					continue
				}
				ok, err := s.scanFile(f)
				if err != nil {
					s.logger.Warn("skipping unreadable file", "path", f, "error", err)
					continue
				}
				if ok {
					changed = append(changed, f)
				}
			}
		}
	}

	s.logger.Info("scan complete", "changed", len(changed))
	return changed, nil
}

// ScanPath scans a single path if it is an actively tracked text file.
// Used by the watcher as files change on disk.
func (s *Service) ScanPath(path string) (bool, error) {
	active, err := s.database.IsActiveTracked(path)
	if err != nil {
		return false, fmt.Errorf("checking tracking state: %w", err)
	}
	if !active || !s.fsmgr.IsTextFile(path) {
		return false, nil
	}
	return s.scanFile(path)
}

// scanFile reads the current content of one file and records a new version
// if it differs from the latest stored state.
func (s *Service) scanFile(path string) (bool, error) {
	content, err := s.fsmgr.ReadText(path)
	if err != nil {
		return false, err
	}

	number, changed, err := s.RecordIfChanged(path, content)
	if err != nil {
		return false, err
	}
	if changed {
		s.logger.Info("change recorded", "path", path, "version", number)
	}
	return changed, nil
}

// RecordIfChanged compares content against the latest stored version of
// path and appends a new version when they differ. The first version of a
// path stores no diff; every later one stores the diff from its
// predecessor. Returns the new version number and whether one was written.
func (s *Service) RecordIfChanged(path, content string) (int64, bool, error) {
	latest, err := s.database.LatestVersion(path)
	if err != nil {
		return 0, false, fmt.Errorf("reading latest version: %w", err)
	}

	if latest == nil {
		number, err := s.database.AppendVersion(path, nil, content, s.clock.Now())
		if err != nil {
			return 0, false, fmt.Errorf("recording initial version: %w", err)
		}
		return number, true, nil
	}

	previous, err := s.versionContent(latest)
	if err != nil {
		return 0, false, err
	}
	if previous == content {
		return 0, false, nil
	}

	d := s.codec.Encode(previous, content)
	number, err := s.database.AppendVersion(path, &d, content, s.clock.Now())
	if err != nil {
		return 0, false, fmt.Errorf("recording version: %w", err)
	}
	return number, true, nil
}
