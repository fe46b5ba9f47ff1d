// Package store defines the entity store consumed by the vidtube core and the
// document helpers shared by its implementations.
package store

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/pipeline"
)

var (
	// ErrNotFound indicates the requested document, or a document it references, does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("document conflict")
)

// Filter is an equality predicate over document fields.
type Filter map[string]any

// Window selects a slice of an ordered result set.
type Window struct {
	Offset int
	Limit  int
}

// Store provides CRUD and pipeline execution over named collections. Each
// mutation is atomic per document; uniqueness and reference checks are
// enforced by the implementation.
type Store interface {
	FindByID(ctx context.Context, collection, id string) (Document, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	Create(ctx context.Context, collection string, doc Document) (Document, error)
	UpdateByID(ctx context.Context, collection, id string, patch Document) (Document, error)
	DeleteByID(ctx context.Context, collection, id string) error
	Aggregate(ctx context.Context, collection string, p pipeline.Pipeline) ([]Document, error)
	AggregatePage(ctx context.Context, collection string, p pipeline.Pipeline, w Window) ([]Document, int64, error)
	Ping(ctx context.Context) error
}
