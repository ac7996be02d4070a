// Package publisher defines the interface for emitting pipeline milestone
// notifications. The abstraction keeps the application independent of a
// specific messaging backend.
package publisher

import "context"

// Provider defines the common interface for a notification publisher.
type Provider interface {
	// Publish sends a message to the configured topic.
	Publish(ctx context.Context, message string) error

	// Close cleans up any client connections and resources.
	Close() error
}

// NoOpProvider is a publisher that performs no operations. It is the default
// when no messaging backend is configured.
type NoOpProvider struct{}

// Publish for NoOpProvider does nothing and returns nil.
func (n *NoOpProvider) Publish(_ context.Context, _ string) error { return nil }

// Close for NoOpProvider does nothing and returns nil.
func (n *NoOpProvider) Close() error { return nil }
