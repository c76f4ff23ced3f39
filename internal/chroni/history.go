package chroni

import (
	"fmt"
	"time"

	"chroni/internal/model"
)

// displayTimeLayout renders version timestamps for human consumption.
const displayTimeLayout = "2006-01-02 15:04:05"

// dateLayouts are the accepted granularities for date-based navigation,
// most specific first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// VersionInfo is a Version annotated with a display timestamp.
type VersionInfo struct {
	model.Version
	FormattedTimestamp string
}

func newVersionInfo(v *model.Version) *VersionInfo {
	return &VersionInfo{
		Version:            *v,
		FormattedTimestamp: v.Timestamp.Format(displayTimeLayout),
	}
}

// History returns the version chain of path, newest first.
// limit <= 0 returns everything. A path with no history yields an empty
// slice, not an error.
func (s *Service) History(path string, limit int) ([]*VersionInfo, error) {
	versions, err := s.database.ListVersions(path, limit)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	infos := make([]*VersionInfo, 0, len(versions))
	for _, v := range versions {
		infos = append(infos, newVersionInfo(v))
	}
	return infos, nil
}

// VersionAt returns one specific version of path with its content filled
// in, materializing it when the stored content was compacted away.
// Returns nil when the version does not exist.
func (s *Service) VersionAt(path string, number int64) (*VersionInfo, error) {
	v, err := s.database.GetVersion(path, number)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if v == nil {
		return nil, nil
	}

	info := newVersionInfo(v)
	if info.Content == nil {
		content, err := s.reconstruct(path, number)
		if err != nil {
			return nil, err
		}
		info.Content = &content
	}
	return info, nil
}

// LatestInfo returns the newest version of path, or nil if the path has no
// history.
func (s *Service) LatestInfo(path string) (*VersionInfo, error) {
	v, err := s.database.LatestVersion(path)
	if err != nil {
		return nil, fmt.Errorf("reading latest version: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	return s.VersionAt(path, v.Number)
}

// ClosestBefore finds the version of path nearest to dateStr without being
// after it. Equally distant candidates resolve to the higher version
// number. Returns nil when no version qualifies; an unparsable dateStr
// fails with InvalidDateError.
func (s *Service) ClosestBefore(path, dateStr string) (*VersionInfo, error) {
	target, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	versions, err := s.database.ListVersions(path, 0)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	var best *model.Version
	var bestDistance time.Duration
	for _, v := range versions {
		if v.Timestamp.After(target) {
			continue
		}
		distance := target.Sub(v.Timestamp)
		switch {
		case best == nil,
			distance < bestDistance,
			distance == bestDistance && v.Number > best.Number:
			best = v
			bestDistance = distance
		}
	}

	if best == nil {
		return nil, nil
	}
	return newVersionInfo(best), nil
}

// parseDate tries each accepted layout in the local time zone.
func parseDate(input string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, input, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidDateError{Input: input}
}
