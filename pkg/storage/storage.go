// Package storage provides content-addressed blob storage for case images.
// Two implementations exist: a local filesystem store that derives the
// content id from a SHA-256 digest, and an Azure Blob Storage backed store
// for deployed environments. Callers depend only on the System contract.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/cerviguard/console/pkg/lifecycle"
)

// Object holds blob bytes together with the metadata recorded at store time.
type Object struct {
	Data        []byte `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// StoreResult reports the content id assigned to stored bytes.
type StoreResult struct {
	CID string `json:"cid"`
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that prepares the backing store.
	Start(lc *lifecycle.Coordinator) error
	// Store persists data and returns its content id. Storing the same
	// bytes twice yields the same id and is not an error.
	Store(ctx context.Context, data []byte, filename, contentType string) (*StoreResult, error)
	// Fetch returns the blob addressed by cid.
	// Returns ErrNotFound if no blob exists for the id.
	Fetch(ctx context.Context, cid string) (*Object, error)
	// Delete removes the blob addressed by cid. Returns ErrNotFound if absent.
	Delete(ctx context.Context, cid string) error
	// Exists reports whether a blob exists for the given content id.
	Exists(ctx context.Context, cid string) (bool, error)
}

// New creates a storage system for the configured driver.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Driver {
	case DriverLocal:
		return NewLocal(cfg, logger)
	case DriverAzure:
		return NewAzure(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

var cidPattern = regexp.MustCompile(`^[a-f0-9]{16,64}$`)

func validateCID(cid string) error {
	if cid == "" {
		return ErrEmptyCID
	}
	if !cidPattern.MatchString(cid) {
		return ErrInvalidCID
	}
	return nil
}
