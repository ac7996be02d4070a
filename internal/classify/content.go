package classify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// BlobStore persists raw page text for later download. Implementations live
// in internal/storage.
type BlobStore interface {
	Save(ctx context.Context, objectName string, data []byte) error
	Load(ctx context.Context, objectName string) ([]byte, error)
}

// ContentSaver stores a page's extracted text in blob storage. The text is
// resolved cache-first so a save after a prediction costs no extra fetch.
type ContentSaver struct {
	cache  *Cache
	source ContentSource
	blobs  BlobStore
	logger *zap.Logger
}

// NewContentSaver wires the content saver.
func NewContentSaver(cache *Cache, source ContentSource, blobs BlobStore, logger *zap.Logger) *ContentSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentSaver{cache: cache, source: source, blobs: blobs, logger: logger}
}

// Save resolves the page text for url and writes it to blob storage. It
// returns the object name the content was stored under.
func (s *ContentSaver) Save(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	text, err := s.resolveText(ctx, url)
	if err != nil {
		return "", err
	}

	object := ObjectNameForURL(url)
	if err := s.blobs.Save(ctx, object, []byte(text)); err != nil {
		return "", &PersistenceError{Op: "save content", Err: err}
	}
	s.logger.Info("content saved", zap.String("url", url), zap.String("object", object))
	return object, nil
}

// Load reads previously saved content back by URL.
func (s *ContentSaver) Load(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	return s.blobs.Load(ctx, ObjectNameForURL(url))
}

func (s *ContentSaver) resolveText(ctx context.Context, url string) (string, error) {
	entry, hit, err := s.cache.Lookup(ctx, url)
	if err != nil {
		return "", err
	}
	if hit {
		return entry.Text, nil
	}
	text, err := s.source.FetchText(ctx, url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return text, nil
}

// ObjectNameForURL derives a filesystem and object safe name from a URL.
// Every character outside [a-zA-Z0-9] maps to an underscore.
func ObjectNameForURL(url string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, url)
	return mapped + ".txt"
}
