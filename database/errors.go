package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a keyed record or value does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStorageUnavailable is returned when a table cannot be written.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUnauthorizedFile is returned for file names outside the data whitelist.
	ErrUnauthorizedFile = errors.New("unauthorized file")
)

// WriteFailure carries the content that could not be persisted so the
// caller can hand it to the operator as a download.
type WriteFailure struct {
	FileName string
	Content  string
	Err      error
}

func (f *WriteFailure) Error() string {
	return fmt.Sprintf("failed to write %s: %v", f.FileName, f.Err)
}

func (f *WriteFailure) Unwrap() []error {
	return []error{ErrStorageUnavailable, f.Err}
}
