package users

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/pkg/handlers"
	"github.com/cerviguard/console/pkg/routes"
)

// Handler provides HTTP endpoints for account administration.
// All routes require the admin role.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "users"),
	}
}

// Routes returns the route group definition for account endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/users",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: identity.RequireAdmin(h.logger, h.List)},
			{Method: "GET", Pattern: "/{id}", Handler: identity.RequireAdmin(h.logger, h.Find)},
			{Method: "POST", Pattern: "", Handler: identity.RequireAdmin(h.logger, h.Create)},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: identity.RequireAdmin(h.logger, h.Deactivate)},
			{Method: "DELETE", Pattern: "/{id}", Handler: identity.RequireAdmin(h.logger, h.Delete)},
		},
	}
}

// List returns all registered accounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single account by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	u, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// Create registers a new account from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidUsername)
		return
	}

	u, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, u)
}

// Deactivate disables an account without removing its records.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	u, err := h.sys.Deactivate(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// Delete removes an account. Existing cases keep their stored owner
// reference and remain listable.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
