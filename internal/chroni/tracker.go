package chroni

import "fmt"

// Track registers a file or directory for version tracking.
// Tracking a directory also tracks every text file currently under it.
// Returns false if the path was already tracked.
func (s *Service) Track(path string) (bool, error) {
	active, err := s.database.IsActiveTracked(path)
	if err != nil {
		return false, fmt.Errorf("checking tracking state: %w", err)
	}
	if active {
		return false, nil
	}

	if err := s.database.UpsertTrackedPath(path); err != nil {
		return false, fmt.Errorf("tracking path: %w", err)
	}

	if s.fsmgr.IsDir(path) {
		files, err := s.fsmgr.FindTextFiles(path)
		if err != nil {
			return false, fmt.Errorf("discovering text files: %w", err)
		}
		for _, f := range files {
			tracked, err := s.database.IsActiveTracked(f)
			if err != nil {
				return false, fmt.Errorf("checking tracking state: %w", err)
			}
			if !tracked {
				if err := s.database.UpsertTrackedPath(f); err != nil {
					return false, fmt.Errorf("tracking %s: %w", f, err)
				}
			}
		}
	}

	s.logger.Info("path tracked", "path", path)
	return true, nil
}

// Untrack stops tracking a path but keeps its history.
// A directory untracks every tracked text file under it as well.
// Returns false if the path was not being tracked.
func (s *Service) Untrack(path string) (bool, error) {
	active, err := s.database.IsActiveTracked(path)
	if err != nil {
		return false, fmt.Errorf("checking tracking state: %w", err)
	}
	if !active {
		return false, nil
	}

	if err := s.database.DeactivateTrackedPath(path); err != nil {
		return false, fmt.Errorf("untracking path: %w", err)
	}

	if s.fsmgr.IsDir(path) {
		files, err := s.fsmgr.FindTextFiles(path)
		if err != nil {
			return false, fmt.Errorf("discovering text files: %w", err)
		}
		for _, f := range files {
			tracked, err := s.database.IsActiveTracked(f)
			if err != nil {
				return false, fmt.Errorf("checking tracking state: %w", err)
			}
			if tracked {
				if err := s.database.DeactivateTrackedPath(f); err != nil {
					return false, fmt.Errorf("untracking %s: %w", f, err)
				}
			}
		}
	}

	s.logger.Info("path untracked", "path", path)
	return true, nil
}

// Forget permanently erases a path's tracking record, its whole version
// chain, and any snapshot entries referencing it.
// Returns false if the path had no history at all.
func (s *Service) Forget(path string) (bool, error) {
	known, err := s.database.PathKnown(path)
	if err != nil {
		return false, fmt.Errorf("checking history: %w", err)
	}
	if !known {
		return false, nil
	}

	if err := s.database.PurgePath(path); err != nil {
		return false, fmt.Errorf("purging history: %w", err)
	}

	if s.fsmgr.IsDir(path) {
		files, err := s.fsmgr.FindTextFiles(path)
		if err != nil {
			return false, fmt.Errorf("discovering text files: %w", err)
		}
		for _, f := range files {
			childKnown, err := s.database.PathKnown(f)
			if err != nil {
				return false, fmt.Errorf("checking history: %w", err)
			}
			if childKnown {
				if err := s.database.PurgePath(f); err != nil {
					return false, fmt.Errorf("purging %s: %w", f, err)
				}
			}
		}
	}

	s.logger.Info("history forgotten", "path", path)
	return true, nil
}

// ListTracked returns all actively tracked paths.
func (s *Service) ListTracked() ([]string, error) {
	return s.database.ListActiveTracked()
}
