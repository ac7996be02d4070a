// Package local implements the blob storage provider on the local
// filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/topic-classifier/internal/storage"
)

// Provider writes saved content to files under a base directory.
type Provider struct {
	baseDir string
}

// New creates a filesystem-backed provider rooted at baseDir, creating the
// directory if necessary.
func New(baseDir string) (*Provider, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}
	return &Provider{baseDir: baseDir}, nil
}

// Save writes data to a file under the base directory.
func (p *Provider) Save(_ context.Context, objectName string, data []byte) error {
	path, err := p.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Load reads a previously saved file back.
func (p *Provider) Load(_ context.Context, objectName string) ([]byte, error) {
	path, err := p.resolve(objectName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &storage.NotFoundError{Object: objectName}
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// resolve joins objectName under baseDir and rejects path traversal.
func (p *Provider) resolve(objectName string) (string, error) {
	if strings.TrimSpace(objectName) == "" {
		return "", fmt.Errorf("object name is required")
	}
	full := filepath.Clean(filepath.Join(p.baseDir, objectName))
	base := filepath.Clean(p.baseDir)
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return full, nil
}
