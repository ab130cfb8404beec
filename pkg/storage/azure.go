package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/cerviguard/console/pkg/lifecycle"
)

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// NewAzure creates a blob store backed by Azure Blob Storage.
// It validates the connection string and creates the client but does not
// touch the container until Start is called. Blobs are keyed by the same
// SHA-256 content id the local driver uses, so records stay portable
// between drivers.
func NewAzure(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "storage", "driver", DriverAzure),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting azure blob store")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil {
			if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "error", err)
				return
			}
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Store(ctx context.Context, data []byte, filename, contentType string) (*StoreResult, error) {
	sum := sha256.Sum256(data)
	cid := hex.EncodeToString(sum[:])

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
		Metadata: map[string]*string{
			"filename": &filename,
		},
	}

	_, err := a.client.UploadStream(ctx, a.container, cid, bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("upload blob %s: %w", cid, err)
	}

	return &StoreResult{CID: cid}, nil
}

func (a *azure) Fetch(ctx context.Context, cid string) (*Object, error) {
	if err := validateCID(cid); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, cid, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", cid, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", cid, err)
	}

	obj := Object{Data: data, ContentType: "application/octet-stream"}
	if resp.ContentType != nil && *resp.ContentType != "" {
		obj.ContentType = *resp.ContentType
	}
	if name, ok := resp.Metadata["filename"]; ok && name != nil {
		obj.Filename = *name
	}

	return &obj, nil
}

func (a *azure) Delete(ctx context.Context, cid string) error {
	if err := validateCID(cid); err != nil {
		return err
	}

	_, err := a.client.DeleteBlob(ctx, a.container, cid, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", cid, err)
	}

	return nil
}

func (a *azure) Exists(ctx context.Context, cid string) (bool, error) {
	if err := validateCID(cid); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(cid)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", cid, err)
	}

	return true, nil
}
