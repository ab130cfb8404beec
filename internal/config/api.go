package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cerviguard/console/pkg/formatting"
	"github.com/cerviguard/console/pkg/middleware"
	"github.com/cerviguard/console/pkg/pagination"
)

// APIConfig holds API surface parameters: base path, upload limits,
// CORS, and pagination defaults.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// APIEnv maps API config fields to environment variable names.
type APIEnv struct {
	BasePath      string
	MaxUploadSize string
	CORS          *middleware.CORSEnv
	Pagination    *pagination.ConfigEnv
}

// MaxUploadSizeBytes returns the parsed upload limit in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxUploadSize)
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *APIConfig) Finalize(env *APIEnv) error {
	c.loadDefaults()

	var corsEnv *middleware.CORSEnv
	var pageEnv *pagination.ConfigEnv
	if env != nil {
		c.loadEnv(env)
		corsEnv = env.CORS
		pageEnv = env.Pagination
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return err
	}
	if err := c.Pagination.Finalize(pageEnv); err != nil {
		return err
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "20MB"
	}
}

func (c *APIConfig) loadEnv(env *APIEnv) {
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
	if env.MaxUploadSize != "" {
		if v := os.Getenv(env.MaxUploadSize); v != "" {
			c.MaxUploadSize = v
		}
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("api base_path must start with /: %q", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	return nil
}
