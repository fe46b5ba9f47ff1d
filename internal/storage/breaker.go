package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
)

// BreakerStorage stops calling the media host after repeated failures and
// fails fast with ErrUnavailable until the open timeout elapses.
type BreakerStorage struct {
	next    MediaStore
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerStorage wraps next with a circuit breaker named name.
func NewBreakerStorage(name string, next MediaStore, cfg config.BreakerConfig) *BreakerStorage {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyPath)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("media breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.SetMediaBreakerState(name, int(to))
		},
	}
	metrics.SetMediaBreakerState(name, int(gobreaker.StateClosed))
	return &BreakerStorage{next: next, breaker: gobreaker.NewCircuitBreaker[any](settings)}
}

// Store uploads through the breaker.
func (b *BreakerStorage) Store(ctx context.Context, localPath string) (models.MediaAsset, error) {
	out, err := b.breaker.Execute(func() (any, error) {
		return b.next.Store(ctx, localPath)
	})
	if err != nil {
		return models.MediaAsset{}, breakerError(err)
	}
	asset, _ := out.(models.MediaAsset)
	return asset, nil
}

// Delete removes through the breaker.
func (b *BreakerStorage) Delete(ctx context.Context, storageID string) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.next.Delete(ctx, storageID)
	})
	return breakerError(err)
}

// State reports the current breaker state.
func (b *BreakerStorage) State() gobreaker.State {
	return b.breaker.State()
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

var _ MediaStore = (*BreakerStorage)(nil)
