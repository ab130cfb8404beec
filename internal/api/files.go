package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/cases"
	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/pkg/handlers"
	"github.com/cerviguard/console/pkg/routes"
	"github.com/cerviguard/console/pkg/storage"
)

// filesHandler serves stored case images. Access is granted through the
// case that references the blob: callers name the case they are reading
// the image of, and the owner-or-admin rule applies to that case.
type filesHandler struct {
	store  storage.System
	cases  cases.System
	logger *slog.Logger
}

func newFilesHandler(store storage.System, casesSystem cases.System, logger *slog.Logger) *filesHandler {
	return &filesHandler{
		store:  store,
		cases:  casesSystem,
		logger: logger.With("handler", "files"),
	}
}

func (h *filesHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/files",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{cid}", Handler: h.fetch},
		},
	}
}

func (h *filesHandler) fetch(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	caseID, err := uuid.Parse(r.URL.Query().Get("case_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, cases.ErrNotFound)
		return
	}

	record, err := h.cases.Find(r.Context(), caseID)
	if err != nil {
		handlers.RespondError(w, h.logger, cases.MapHTTPStatus(err), err)
		return
	}

	if !user.IsAdmin() && record.OwnerID.String() != user.ID {
		handlers.RespondError(w, h.logger, http.StatusForbidden, cases.ErrForbidden)
		return
	}

	cid := r.PathValue("cid")
	if cid != record.ImageCID {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	obj, err := h.store.Fetch(r.Context(), cid)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(obj.Data)))
	if obj.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", obj.Filename))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(obj.Data)
}
