package analysis

import (
	"fmt"
	"os"
	"time"
)

// Analysis modes.
const (
	ModeRemote = "remote"
	ModeMock   = "mock"
)

// Config holds analysis service parameters.
type Config struct {
	Mode    string `toml:"mode"`
	BaseURL string `toml:"base_url"`
	Source  string `toml:"source"`
	Timeout string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode    string
	BaseURL string
	Source  string
	Timeout string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeMock
	}
	if c.Source == "" {
		c.Source = "cerviguard_console"
	}
	if c.Timeout == "" {
		c.Timeout = "250s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Source != "" {
		if v := os.Getenv(env.Source); v != "" {
			c.Source = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeMock:
	case ModeRemote:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url required for remote mode")
		}
	default:
		return fmt.Errorf("mode must be %q or %q", ModeRemote, ModeMock)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
