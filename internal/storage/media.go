// Package storage adapts the external media host used for video files and thumbnails.
package storage

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrUnavailable indicates the media host is not configured or is refusing calls.
	ErrUnavailable = errors.New("media storage unavailable")
	// ErrEmptyPath indicates an upload was requested without a local file.
	ErrEmptyPath = errors.New("media storage: empty local path")
)

// MediaStore uploads local files to the media host and removes them again.
type MediaStore interface {
	Store(ctx context.Context, localPath string) (models.MediaAsset, error)
	Delete(ctx context.Context, storageID string) error
}

// Unconfigured is used when no media host is configured; every call fails with ErrUnavailable.
type Unconfigured struct{}

// Store always fails.
func (Unconfigured) Store(context.Context, string) (models.MediaAsset, error) {
	return models.MediaAsset{}, ErrUnavailable
}

// Delete always fails.
func (Unconfigured) Delete(context.Context, string) error {
	return ErrUnavailable
}
