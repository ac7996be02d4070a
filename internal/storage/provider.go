// Package storage defines the interface for a blob storage provider, used to
// persist saved page content. The abstraction keeps the application
// independent of a specific backend (GCS, local filesystem, or none).
package storage

import "context"

// Provider defines the common interface for a blob storage provider.
type Provider interface {
	// Save uploads data to a specified object path/key in the blob store.
	Save(ctx context.Context, objectName string, data []byte) error

	// Load reads an object back; used to serve content downloads.
	Load(ctx context.Context, objectName string) ([]byte, error)
}

// NoOpProvider is a storage provider that discards writes and has nothing to
// read. Useful when content saving is disabled.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (n *NoOpProvider) Save(_ context.Context, _ string, _ []byte) error { return nil }

// Load for NoOpProvider always reports the object as missing.
func (n *NoOpProvider) Load(_ context.Context, objectName string) ([]byte, error) {
	return nil, &NotFoundError{Object: objectName}
}

// NotFoundError reports a missing object.
type NotFoundError struct {
	Object string
}

func (e *NotFoundError) Error() string {
	return "object not found: " + e.Object
}
