package api

import (
	"github.com/cerviguard/console/internal/cases"
	"github.com/cerviguard/console/internal/config"
	"github.com/cerviguard/console/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Options cases.Options
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Analyzers: infra.Analyzers,
		},
		Options: cases.Options{
			MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
			Pagination:    cfg.API.Pagination,
		},
	}
}
