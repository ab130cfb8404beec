package analysis

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds the analyzer handle on first use and caches it for the
// process lifetime. Concurrent first callers are collapsed into a single
// construction via singleflight.
type Factory struct {
	cfg    *Config
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cached System
}

// NewFactory creates a Factory for the given configuration.
func NewFactory(cfg *Config, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Handle returns the process-wide analyzer, constructing it on first call.
func (f *Factory) Handle() (System, error) {
	f.mu.RLock()
	if f.cached != nil {
		defer f.mu.RUnlock()
		return f.cached, nil
	}
	f.mu.RUnlock()

	v, err, _ := f.group.Do("analyzer", func() (any, error) {
		sys, err := f.build()
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.cached = sys
		f.mu.Unlock()

		return sys, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(System), nil
}

func (f *Factory) build() (System, error) {
	switch f.cfg.Mode {
	case ModeMock:
		f.logger.Info("analysis running in mock mode")
		return NewMock(), nil
	default:
		return NewClient(f.cfg, f.logger), nil
	}
}
