package identity

import (
	"fmt"
	"os"
)

// Config holds session verification parameters.
type Config struct {
	Secret string `toml:"secret"`
	Issuer string `toml:"issuer"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Secret string
	Issuer string
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
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "cerviguard-console"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("secret required")
	}
	return nil
}
