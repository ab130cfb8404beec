// Package handlers provides shared HTTP response helpers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already written; nothing left to do but note it.
		slog.Default().Error("encode response failed", "error", err)
	}
}

// RespondError logs the error and writes it as a JSON error body.
// Internal server errors are masked with a generic message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}

	RespondJSON(w, status, errorBody{Error: msg})
}
