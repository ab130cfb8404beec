package storage

import (
	"fmt"
	"os"
)

// Storage driver names.
const (
	DriverLocal = "local"
	DriverAzure = "azure"
)

// Config holds blob storage parameters for both drivers.
// LocalRoot applies to the local driver; ContainerName and
// ConnectionString apply to the azure driver.
type Config struct {
	Driver           string `toml:"driver"`
	LocalRoot        string `toml:"local_root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Driver           string
	LocalRoot        string
	ContainerName    string
	ConnectionString string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.LocalRoot != "" {
		c.LocalRoot = overlay.LocalRoot
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverLocal
	}
	if c.LocalRoot == "" {
		c.LocalRoot = ".cerviguard-state/blobs"
	}
	if c.ContainerName == "" {
		c.ContainerName = "case-images"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Driver != "" {
		if v := os.Getenv(env.Driver); v != "" {
			c.Driver = v
		}
	}
	if env.LocalRoot != "" {
		if v := os.Getenv(env.LocalRoot); v != "" {
			c.LocalRoot = v
		}
	}
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverLocal:
		if c.LocalRoot == "" {
			return fmt.Errorf("local_root required for local driver")
		}
	case DriverAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required for azure driver")
		}
		if c.ConnectionString == "" {
			return fmt.Errorf("connection_string required for azure driver")
		}
	default:
		return fmt.Errorf("driver must be %q or %q", DriverLocal, DriverAzure)
	}
	return nil
}
