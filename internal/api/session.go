package api

import (
	"log/slog"
	"net/http"

	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/pkg/handlers"
	"github.com/cerviguard/console/pkg/routes"
)

// sessionHandler exposes the caller's verified identity. Token issuance
// happens outside this service; this endpoint lets clients confirm what
// the console resolved from their session.
type sessionHandler struct {
	logger *slog.Logger
}

func newSessionHandler(logger *slog.Logger) *sessionHandler {
	return &sessionHandler{logger: logger.With("handler", "session")}
}

func (h *sessionHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/me",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.me},
		},
	}
}

func (h *sessionHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, user)
}
