package cases

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/pkg/handlers"
	"github.com/cerviguard/console/pkg/pagination"
	"github.com/cerviguard/console/pkg/routes"
)

// Handler provides the HTTP endpoints for case intake and review.
type Handler struct {
	sys    System
	opts   Options
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system, limits, and logger.
func NewHandler(sys System, opts Options, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		opts:   opts,
		logger: logger.With("handler", "cases"),
	}
}

// Routes returns the route group definition for case endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/cases",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// SearchRequest is the body of POST /cases/search.
type SearchRequest struct {
	pagination.PageRequest
	Status *string `json:"status,omitempty"`
}

// Create opens a new case from a multipart form carrying the image under
// the "image" field and optional free-text "notes".
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrImageTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyImage)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyImage)
		return
	}

	cmd := CreateCommand{
		Owner:       user,
		Image:       data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Notes:       r.FormValue("notes"),
	}

	record, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		// A failed classification still produced a ledger entry; return it
		// alongside the mapped status so clients see both.
		if record != nil {
			handlers.RespondJSON(w, MapHTTPStatus(err), record)
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, record)
}

// List returns the caller's cases, or every case for admin users.
// Supported query parameters: page, page_size, search, status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.opts.Pagination)

	var filter Filter
	if s := r.URL.Query().Get("status"); s != "" {
		status, valid := ParseStatus(s)
		if !valid {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
			return
		}
		filter.Status = &status
	}

	h.respondList(w, r, user, page, filter)
}

// Search is the body-based variant of List for clients that prefer POST.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	req.Normalize(h.opts.Pagination)

	var filter Filter
	if req.Status != nil {
		status, valid := ParseStatus(*req.Status)
		if !valid {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
			return
		}
		filter.Status = &status
	}

	h.respondList(w, r, user, req.PageRequest, filter)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, user identity.User, page pagination.PageRequest, filter Filter) {
	if user.IsAdmin() {
		result, err := h.sys.ListAll(r.Context(), page, filter)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, result)
		return
	}

	ownerID, err := uuid.Parse(user.ID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	result, err := h.sys.List(r.Context(), ownerID, page, filter)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single case. Non-admin callers only see their own.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	record, ok := h.authorize(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, record)
}

// Delete removes a case and its image. Non-admin callers only delete their own.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	record, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), record.ID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorize resolves the case named in the path and enforces the
// owner-or-admin access rule. It writes the error response itself.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (*CaseRecord, bool) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return nil, false
	}

	record, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}

	if !user.IsAdmin() && record.OwnerID.String() != user.ID {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return nil, false
	}

	return record, true
}
