// Package api assembles the API module with all domain systems and route
// registration. Every route behind the module requires a verified session.
package api

import (
	"net/http"

	"github.com/cerviguard/console/internal/config"
	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/internal/infrastructure"
	"github.com/cerviguard/console/pkg/middleware"
	"github.com/cerviguard/console/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(identity.Middleware(&cfg.Identity, runtime.Logger))

	return m, nil
}
