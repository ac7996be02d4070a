// Package gcs implements the blob storage provider on Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/storage"
)

// Provider implements storage.Provider for Google Cloud Storage.
type Provider struct {
	client     *gstorage.Client
	bucketName string
	logger     *zap.Logger
}

// New initializes a GCS client and verifies bucket access. Authentication is
// handled via Application Default Credentials.
func New(ctx context.Context, bucketName string, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	// Fail fast on startup if the bucket is misconfigured.
	if _, err := client.Bucket(bucketName).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close GCS client after bucket check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucketName, err)
	}

	return &Provider{client: client, bucketName: bucketName, logger: logger}, nil
}

// Save uploads the data to the named object in the bucket.
func (p *Provider) Save(ctx context.Context, objectName string, data []byte) error {
	wc := p.client.Bucket(p.bucketName).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			p.logger.Warn("close GCS writer after write failure", zap.Error(closeErr))
		}
		return fmt.Errorf("write GCS object %s: %w", objectName, err)
	}
	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close GCS writer for object %s: %w", objectName, err)
	}
	return nil
}

// Load reads the named object back from the bucket.
func (p *Provider) Load(ctx context.Context, objectName string) ([]byte, error) {
	rc, err := p.client.Bucket(p.bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gstorage.ErrObjectNotExist) {
			return nil, &storage.NotFoundError{Object: objectName}
		}
		return nil, fmt.Errorf("open GCS object %s: %w", objectName, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s: %w", objectName, err)
	}
	return data, nil
}
