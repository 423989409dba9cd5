package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; every error returned by the
// services wraps exactly one of these.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalid            = errors.New("invalid")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var (
	ErrUsernameTaken    = fmt.Errorf("%w: username is already taken", ErrConflict)
	ErrUsernameReserved = fmt.Errorf("%w: username is reserved", ErrConflict)
	ErrOrderMismatch    = fmt.Errorf("%w: order must list every link exactly once", ErrConflict)

	ErrProfileNotFound = fmt.Errorf("%w: profile", ErrNotFound)
	ErrLinkNotFound    = fmt.Errorf("%w: link", ErrNotFound)
)

// Invalidf builds an ErrInvalid with a message meant for the owner.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Unavailable wraps a backend failure so that it matches ErrStorageUnavailable
// while keeping the driver error for diagnostics.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// Kind reports the error kind name used on the wire.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "internal"
	}
}
