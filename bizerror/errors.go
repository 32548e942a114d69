package bizerror

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrUnknownState      = errors.New("unknown state")

	ErrInvalidPassword = errors.New("invalid password")

	ErrStoreUnavailable = errors.New("store unavailable")
)
