package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cerviguard/console/pkg/lifecycle"
)

type local struct {
	root   string
	logger *slog.Logger
}

// NewLocal creates a filesystem-backed store rooted at cfg.LocalRoot.
// Content ids are the hex SHA-256 digest of the stored bytes, so the
// same image always maps to the same id.
func NewLocal(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.LocalRoot == "" {
		return nil, fmt.Errorf("local storage root not configured")
	}

	return &local{
		root:   cfg.LocalRoot,
		logger: logger.With("system", "storage", "driver", DriverLocal),
	}, nil
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting local blob store")

	lc.OnStartup(func() {
		if err := os.MkdirAll(l.root, 0o755); err != nil {
			l.logger.Error("blob store root initialization failed", "error", err)
			return
		}
		l.logger.Info("blob store ready", "root", l.root)
	})

	return nil
}

func (l *local) Store(ctx context.Context, data []byte, filename, contentType string) (*StoreResult, error) {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure blob root: %w", err)
	}

	sum := sha256.Sum256(data)
	cid := hex.EncodeToString(sum[:])

	if err := os.WriteFile(l.blobPath(cid), data, 0o644); err != nil {
		return nil, fmt.Errorf("write blob %s: %w", cid, err)
	}

	meta := Object{Filename: filename, ContentType: contentType}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal blob metadata: %w", err)
	}
	if err := os.WriteFile(l.metaPath(cid), encoded, 0o644); err != nil {
		return nil, fmt.Errorf("write blob metadata %s: %w", cid, err)
	}

	return &StoreResult{CID: cid}, nil
}

func (l *local) Fetch(ctx context.Context, cid string) (*Object, error) {
	if err := validateCID(cid); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.blobPath(cid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", cid, err)
	}

	obj := Object{Data: data, ContentType: "application/octet-stream"}
	if encoded, err := os.ReadFile(l.metaPath(cid)); err == nil {
		// Metadata is best effort; a missing sidecar leaves the default type.
		var meta Object
		if err := json.Unmarshal(encoded, &meta); err == nil {
			obj.Filename = meta.Filename
			if meta.ContentType != "" {
				obj.ContentType = meta.ContentType
			}
		}
	}

	return &obj, nil
}

func (l *local) Delete(ctx context.Context, cid string) error {
	if err := validateCID(cid); err != nil {
		return err
	}

	if err := os.Remove(l.blobPath(cid)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", cid, err)
	}

	if err := os.Remove(l.metaPath(cid)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("blob metadata delete failed", "cid", cid, "error", err)
	}

	return nil
}

func (l *local) Exists(ctx context.Context, cid string) (bool, error) {
	if err := validateCID(cid); err != nil {
		return false, err
	}

	_, err := os.Stat(l.blobPath(cid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob %s: %w", cid, err)
	}
	return true, nil
}

func (l *local) blobPath(cid string) string {
	return filepath.Join(l.root, cid)
}

func (l *local) metaPath(cid string) string {
	return filepath.Join(l.root, cid+".meta.json")
}
