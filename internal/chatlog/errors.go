package chatlog

import "errors"

// Error kinds surfaced by log operations. Callers classify failures with
// errors.Is; the HTTP layer maps each kind to a response status.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("unavailable")
)
