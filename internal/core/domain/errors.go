package domain

import "errors"

// Stable error kinds the handlers map to HTTP statuses. Repositories and
// services wrap these so callers can test with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBusy              = errors.New("resource busy")
)
