package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates no blob exists for the requested content id.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyCID indicates an empty content id was provided.
	ErrEmptyCID = errors.New("content id must not be empty")
	// ErrInvalidCID indicates the content id is not a valid hex digest.
	ErrInvalidCID = errors.New("content id is not a valid digest")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyCID) || errors.Is(err, ErrInvalidCID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
