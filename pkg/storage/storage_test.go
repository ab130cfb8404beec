package storage_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cerviguard/console/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocalStore(t *testing.T) storage.System {
	t.Helper()

	cfg := &storage.Config{Driver: storage.DriverLocal, LocalRoot: t.TempDir()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize: %v", err)
	}

	store, err := storage.New(cfg, testLogger())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	return store
}

func TestStoreAssignsContentID(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	data := []byte("jpeg-bytes")

	result, err := store.Store(ctx, data, "frame.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	sum := sha256.Sum256(data)
	if want := hex.EncodeToString(sum[:]); result.CID != want {
		t.Errorf("CID = %s, want %s", result.CID, want)
	}
}

func TestStoreIsIdempotent(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	data := []byte("same bytes twice")

	first, err := store.Store(ctx, data, "a.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("first Store() error = %v", err)
	}
	second, err := store.Store(ctx, data, "b.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("second Store() error = %v", err)
	}

	if first.CID != second.CID {
		t.Errorf("same bytes produced different ids: %s vs %s", first.CID, second.CID)
	}
}

func TestFetchRoundTrip(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	data := []byte("colposcopy frame")

	result, err := store.Store(ctx, data, "frame.png", "image/png")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	obj, err := store.Fetch(ctx, result.CID)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if string(obj.Data) != string(data) {
		t.Error("fetched bytes differ from stored bytes")
	}
	if obj.Filename != "frame.png" {
		t.Errorf("Filename = %q, want frame.png", obj.Filename)
	}
	if obj.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", obj.ContentType)
	}
}

func TestFetchUnknownCID(t *testing.T) {
	store := newLocalStore(t)

	_, err := store.Fetch(context.Background(), "deadbeefdeadbeefdeadbeef")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestInvalidCIDs(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cid  string
		want error
	}{
		{"empty", "", storage.ErrEmptyCID},
		{"path traversal", "../../etc/passwd", storage.ErrInvalidCID},
		{"uppercase hex", "DEADBEEFDEADBEEFDEADBEEF", storage.ErrInvalidCID},
		{"too short", "abc123", storage.ErrInvalidCID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Fetch(ctx, tt.cid); !errors.Is(err, tt.want) {
				t.Errorf("Fetch(%q) error = %v, want %v", tt.cid, err, tt.want)
			}
			if err := store.Delete(ctx, tt.cid); !errors.Is(err, tt.want) {
				t.Errorf("Delete(%q) error = %v, want %v", tt.cid, err, tt.want)
			}
		})
	}
}

func TestDeleteAndExists(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	result, err := store.Store(ctx, []byte("transient"), "t.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	exists, err := store.Exists(ctx, result.CID)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v, want true", exists, err)
	}

	if err := store.Delete(ctx, result.CID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err = store.Exists(ctx, result.CID)
	if err != nil || exists {
		t.Errorf("Exists() after delete = %v, %v, want false", exists, err)
	}

	if err := store.Delete(ctx, result.CID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"defaults to local", storage.Config{}, false},
		{"azure without connection string", storage.Config{Driver: storage.DriverAzure}, true},
		{
			"azure fully configured",
			storage.Config{Driver: storage.DriverAzure, ConnectionString: "UseDevelopmentStorage=true"},
			false,
		},
		{"unknown driver", storage.Config{Driver: "s3"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
