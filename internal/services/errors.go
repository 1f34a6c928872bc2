package services

import (
	"errors"
	"fmt"

	"storefront-backend/database"
)

var (
	// ErrNotFound is returned when a record id does not exist
	ErrNotFound = database.ErrNotFound
	// ErrStorageUnavailable is returned when a table cannot be read or written
	ErrStorageUnavailable = database.ErrStorageUnavailable
	// ErrUnauthorizedFile is returned for files outside the write whitelist
	ErrUnauthorizedFile = database.ErrUnauthorizedFile
	// ErrValidation is returned when input is rejected
	ErrValidation = errors.New("validation failed")
	// ErrRelayNotConfigured is returned when the relay channel lacks its phone number or email
	ErrRelayNotConfigured = errors.New("order relay channel is not configured")
)

// validationError wraps ErrValidation with a user-facing message.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound wraps ErrNotFound with the kind and id of the missing record.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
