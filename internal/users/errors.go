package users

import (
	"errors"
	"net/http"
)

// Domain errors for account operations.
var (
	ErrNotFound        = errors.New("user not found")
	ErrDuplicate       = errors.New("username already registered")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidRole     = errors.New("invalid role")
)

// MapHTTPStatus maps account domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidUsername) || errors.Is(err, ErrInvalidRole) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
