package identity

import "errors"

// Identity errors surfaced by the middleware and role guards.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient privileges")
)
