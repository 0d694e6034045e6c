// Package storage persists uploaded images and reports the URL clients use
// to fetch them.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophstore/internal/server/config"
)

// ImageStore saves and removes image objects by name.
type ImageStore interface {
	// Put stores body under name and returns its public URL.
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, name string) error
}

// New picks the backend configured by cfg.UploadBackend.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.UploadBackend {
	case config.UploadBackendLocal:
		return NewLocalStore(cfg.UploadDir)
	case config.UploadBackendS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}
