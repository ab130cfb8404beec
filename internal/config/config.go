// Package config assembles the console configuration from TOML files and
// environment variables. A base config.toml is loaded first, then an
// environment-specific overlay (config.<env>.toml, selected by
// CERVIGUARD_ENV) is merged on top, and finally CERVIGUARD_* environment
// variables override individual fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cerviguard/console/internal/analysis"
	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/pkg/database"
	"github.com/cerviguard/console/pkg/middleware"
	"github.com/cerviguard/console/pkg/pagination"
	"github.com/cerviguard/console/pkg/storage"
)

// EnvironmentVar selects the configuration overlay file.
const EnvironmentVar = "CERVIGUARD_ENV"

// Config is the root console configuration.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Database database.Config `toml:"database"`
	Storage  storage.Config  `toml:"storage"`
	Analysis analysis.Config `toml:"analysis"`
	Identity identity.Config `toml:"identity"`
	API      APIConfig       `toml:"api"`
}

// env holds the CERVIGUARD_* environment variable names injected into each
// section's Finalize.
var env = struct {
	Server   ServerEnv
	Database database.Env
	Storage  storage.Env
	Analysis analysis.Env
	Identity identity.Env
	API      APIEnv
}{
	Server: ServerEnv{
		Host: "CERVIGUARD_SERVER_HOST",
		Port: "CERVIGUARD_SERVER_PORT",
	},
	Database: database.Env{
		Host:            "CERVIGUARD_DB_HOST",
		Port:            "CERVIGUARD_DB_PORT",
		Name:            "CERVIGUARD_DB_NAME",
		User:            "CERVIGUARD_DB_USER",
		Password:        "CERVIGUARD_DB_PASSWORD",
		SSLMode:         "CERVIGUARD_DB_SSL_MODE",
		MaxOpenConns:    "CERVIGUARD_DB_MAX_OPEN_CONNS",
		MaxIdleConns:    "CERVIGUARD_DB_MAX_IDLE_CONNS",
		ConnMaxLifetime: "CERVIGUARD_DB_CONN_MAX_LIFETIME",
		ConnTimeout:     "CERVIGUARD_DB_CONN_TIMEOUT",
	},
	Storage: storage.Env{
		Driver:           "CERVIGUARD_STORAGE_DRIVER",
		LocalRoot:        "CERVIGUARD_STORAGE_LOCAL_ROOT",
		ContainerName:    "CERVIGUARD_STORAGE_CONTAINER",
		ConnectionString: "CERVIGUARD_STORAGE_CONNECTION_STRING",
	},
	Analysis: analysis.Env{
		Mode:    "CERVIGUARD_ANALYSIS_MODE",
		BaseURL: "CERVIGUARD_ANALYSIS_BASE_URL",
		Source:  "CERVIGUARD_ANALYSIS_SOURCE",
		Timeout: "CERVIGUARD_ANALYSIS_TIMEOUT",
	},
	Identity: identity.Env{
		Secret: "CERVIGUARD_SESSION_SECRET",
		Issuer: "CERVIGUARD_SESSION_ISSUER",
	},
	API: APIEnv{
		BasePath:      "CERVIGUARD_API_BASE_PATH",
		MaxUploadSize: "CERVIGUARD_API_MAX_UPLOAD_SIZE",
		CORS: &middleware.CORSEnv{
			Enabled:          "CERVIGUARD_CORS_ENABLED",
			Origins:          "CERVIGUARD_CORS_ORIGINS",
			AllowedMethods:   "CERVIGUARD_CORS_ALLOWED_METHODS",
			AllowedHeaders:   "CERVIGUARD_CORS_ALLOWED_HEADERS",
			AllowCredentials: "CERVIGUARD_CORS_ALLOW_CREDENTIALS",
			MaxAge:           "CERVIGUARD_CORS_MAX_AGE",
		},
		Pagination: &pagination.ConfigEnv{
			DefaultPageSize: "CERVIGUARD_PAGE_SIZE_DEFAULT",
			MaxPageSize:     "CERVIGUARD_PAGE_SIZE_MAX",
		},
	},
}

// Load reads configuration from the given directory. Missing files are not
// errors; defaults and environment variables cover everything except the
// session secret, which must always be provided.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	if err := readFile(filepath.Join(dir, "config.toml"), cfg); err != nil {
		return nil, err
	}

	if name := os.Getenv(EnvironmentVar); name != "" {
		overlay := &Config{}
		path := filepath.Join(dir, fmt.Sprintf("config.%s.toml", name))
		if err := readFile(path, overlay); err != nil {
			return nil, err
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Analysis.Merge(&overlay.Analysis)
	c.Identity.Merge(&overlay.Identity)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment variable overrides, and validation
// across every section.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(&env.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Database.Finalize(&env.Database); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Storage.Finalize(&env.Storage); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Analysis.Finalize(&env.Analysis); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}
	if err := c.Identity.Finalize(&env.Identity); err != nil {
		return fmt.Errorf("identity config: %w", err)
	}
	if err := c.API.Finalize(&env.API); err != nil {
		return fmt.Errorf("api config: %w", err)
	}
	return nil
}

func readFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
