// Package sentinel holds the facts stores report about persisted rows.
//
// Stores return these (optionally wrapped with fmt.Errorf("...: %w")) and
// services translate them into coded errors from pkg/domain-errors. They are
// never written to HTTP responses directly.
package sentinel

import "errors"

var (
	// ErrNotFound means the row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed means a uniqueness constraint rejected the write:
	// a second pledge by the same donor, a reused unit code, an occupied bed.
	ErrAlreadyUsed = errors.New("already used")
	// ErrConflict means a concurrent writer changed the row first, or a
	// delete was refused because other rows still reference it.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState means the row is not in a state that allows the write.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable means a backing service could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
