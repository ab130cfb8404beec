package cases_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/cerviguard/console/internal/analysis"
	"github.com/cerviguard/console/internal/cases"
)

func TestFailureCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"image validation", &analysis.ValidationError{Code: "image_invalid"}, cases.CodeInvalidImage},
		{"timeout", &analysis.TimeoutError{}, cases.CodeTimeout},
		{"schema mismatch", &analysis.SchemaError{Missing: "result.analysis"}, cases.CodeSchema},
		{"service failure", &analysis.ServiceError{Status: 502}, cases.CodeService},
		{"unrecognized", errors.New("disk full"), cases.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cases.FailureCode(tt.err); got != tt.want {
				t.Errorf("FailureCode(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", cases.ErrNotFound, http.StatusNotFound},
		{"forbidden", cases.ErrForbidden, http.StatusForbidden},
		{"empty image", cases.ErrEmptyImage, http.StatusBadRequest},
		{"notes too long", cases.ErrNotesTooLong, http.StatusBadRequest},
		{"image too large", cases.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{"analysis timeout", &analysis.TimeoutError{}, http.StatusGatewayTimeout},
		{"analysis rejection", &analysis.ValidationError{}, http.StatusUnprocessableEntity},
		{"analysis outage", &analysis.ServiceError{Status: 500}, http.StatusBadGateway},
		{"analysis schema drift", &analysis.SchemaError{}, http.StatusBadGateway},
		{"unrecognized", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cases.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"processing", "completed", "error"} {
		if _, ok := cases.ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) rejected a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "done", "Processing", "archived"} {
		if _, ok := cases.ParseStatus(invalid); ok {
			t.Errorf("ParseStatus(%q) accepted an invalid status", invalid)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if cases.StatusProcessing.Terminal() {
		t.Error("processing must not be terminal")
	}
	if !cases.StatusCompleted.Terminal() {
		t.Error("completed must be terminal")
	}
	if !cases.StatusError.Terminal() {
		t.Error("error must be terminal")
	}
}
