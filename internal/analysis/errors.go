package analysis

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for the analysis failure taxonomy. The typed errors below
// unwrap to these, so callers can branch with errors.Is while the typed
// values carry diagnostic detail.
var (
	// ErrTimeout indicates the service did not respond within the configured window.
	ErrTimeout = errors.New("analysis timed out")
	// ErrService indicates the service was unreachable or reported a failure.
	ErrService = errors.New("analysis service error")
	// ErrSchema indicates the response did not match any known schema generation.
	ErrSchema = errors.New("analysis response schema not recognized")
	// ErrInvalidImage indicates the submitted image failed content validation.
	ErrInvalidImage = errors.New("image failed content validation")
)

// TimeoutError reports an analysis call that exceeded the configured timeout.
type TimeoutError struct {
	Configured time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis timeout after %.0f seconds", e.Configured.Seconds())
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// ServiceError reports a failure returned by or encountered reaching the
// analysis service. Status is zero for transport-level failures.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("analysis service returned %d: %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("analysis service returned %d", e.Status)
	case e.Message != "":
		return "analysis service: " + e.Message
	default:
		return ErrService.Error()
	}
}

func (e *ServiceError) Unwrap() error { return ErrService }

// SchemaError reports a response missing a required field or matching no
// known schema variant.
type SchemaError struct {
	Missing string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("analysis response missing %s", e.Missing)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ValidationError reports that the service rejected the image itself
// (for example, not a recognizable cervical image).
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "image validation failed: " + e.Message
	}
	return ErrInvalidImage.Error()
}

func (e *ValidationError) Unwrap() error { return ErrInvalidImage }

// MapHTTPStatus maps analysis errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, ErrInvalidImage) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrService) || errors.Is(err, ErrSchema) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
