package cases

import (
	"errors"
	"net/http"

	"github.com/cerviguard/console/internal/analysis"
	"github.com/cerviguard/console/pkg/storage"
)

// Domain errors for case operations.
var (
	ErrNotFound      = errors.New("case not found")
	ErrForbidden     = errors.New("case belongs to another user")
	ErrEmptyImage    = errors.New("image payload is empty")
	ErrImageTooLarge = errors.New("image exceeds the maximum upload size")
	ErrNotesTooLong  = errors.New("notes exceed maximum length")
	ErrDuplicate     = errors.New("duplicate case")
)

// Ledger error codes recorded on failed cases.
const (
	CodeInvalidImage = "image_invalid"
	CodeTimeout      = "analysis_timeout"
	CodeService      = "analysis_unavailable"
	CodeSchema       = "analysis_schema_mismatch"
	CodeInternal     = "internal_error"
)

// FailureCode maps a classification failure to the error code stored on
// the case record.
func FailureCode(err error) string {
	switch {
	case errors.Is(err, analysis.ErrInvalidImage):
		return CodeInvalidImage
	case errors.Is(err, analysis.ErrTimeout):
		return CodeTimeout
	case errors.Is(err, analysis.ErrSchema):
		return CodeSchema
	case errors.Is(err, analysis.ErrService):
		return CodeService
	}
	return CodeInternal
}

// MapHTTPStatus maps case domain errors, including wrapped analysis and
// storage failures, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrEmptyImage), errors.Is(err, ErrNotesTooLong):
		return http.StatusBadRequest
	case errors.Is(err, ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, analysis.ErrTimeout),
		errors.Is(err, analysis.ErrService),
		errors.Is(err, analysis.ErrSchema),
		errors.Is(err, analysis.ErrInvalidImage):
		return analysis.MapHTTPStatus(err)
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
