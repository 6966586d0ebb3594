package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDate     = errors.New("no timestamp or date")
	ErrUnreadableEntry = errors.New("stored entry could not be decoded")

	errUnknownField = errors.New("unknown field")
)

// MalformedRecordError describes a stored entry that cannot be shown. The
// entry itself is left untouched.
type MalformedRecordError struct {
	Collection string
	Index      int
	Reason     string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("skipped %s entry #%d: %s", e.Collection, e.Index+1, e.Reason)
}

// History is a display-ordered view of an append-only collection together
// with the entries that had to be left out.
type History[T any] struct {
	Entries []T
	Skipped []*MalformedRecordError
}
