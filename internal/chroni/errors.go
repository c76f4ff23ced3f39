package chroni

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing path, version, or snapshot.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSnapshot marks a snapshot name collision.
	ErrDuplicateSnapshot = errors.New("snapshot name already exists")
)

// InvalidDateError reports a navigation timestamp that matched none of the
// accepted layouts (date, date+hour:minute, date+hour:minute:second).
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("unrecognized date %q (want YYYY-MM-DD, YYYY-MM-DD HH:MM, or YYYY-MM-DD HH:MM:SS)", e.Input)
}
