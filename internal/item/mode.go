package item

import "fmt"

// EditMode selects the scope of an edit or delete on a recurring series.
type EditMode string

const (
	// EditThisOne targets a single occurrence, leaving the rest of the
	// series untouched.
	EditThisOne EditMode = "ThisOne"
	// EditFromThisOne targets the occurrence and everything after it.
	EditFromThisOne EditMode = "FromThisOne"
	// EditAllInSeries targets every occurrence, past and future.
	EditAllInSeries EditMode = "AllInSeries"
)

// ParseEditMode validates a mode string at the API boundary so unrecognized
// values never reach the series editor.
func ParseEditMode(s string) (EditMode, error) {
	switch EditMode(s) {
	case EditThisOne, EditFromThisOne, EditAllInSeries:
		return EditMode(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidEditMode, s)
}
