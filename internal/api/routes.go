package api

import (
	"net/http"

	"github.com/cerviguard/console/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Cases.Handler().Routes(),
		domain.Users.Handler().Routes(),
		newFilesHandler(runtime.Storage, domain.Cases, runtime.Logger).routes(),
		newSessionHandler(runtime.Logger).routes(),
	)
}
