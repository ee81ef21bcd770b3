package progression

import "errors"

// Engine error taxonomy. Handlers map these onto HTTP statuses
// (404, 423, 403, 409, 422 respectively).
var (
	ErrNotFound         = errors.New("not found")
	ErrLocked           = errors.New("locked")
	ErrAttemptsExceeded = errors.New("attempts exceeded")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation failed")
)
