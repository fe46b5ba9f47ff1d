package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/comments"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/likes"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/subscriptions"
	"github.com/vidtube/backend/internal/tweets"
	"github.com/vidtube/backend/internal/videos"
)

const toggleLimiterTTL = 10 * time.Minute

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, s store.Store, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, error) {
	media, err := buildMediaStore(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	deps := handlers.Dependencies{
		Logger:        logger,
		ToggleLimiter: middleware.NewKeyedRateLimiter(cfg.ToggleRate, cfg.ToggleBurst, toggleLimiterTTL),
		CORSOrigins:   cfg.CORSOrigins,
		UploadDir:     cfg.UploadDir,
		Store:         s,
	}

	if cfg.JWTSecret != "" {
		verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("build token verifier: %w", err)
		}
		deps.Verifier = verifier
	} else {
		logger.Warn("VIDTUBE_JWT_SECRET not set; every request is anonymous and writes are rejected")
	}

	defaults := paginate.Defaults{Limit: cfg.PageLimit, MaxLimit: cfg.MaxPageLimit}
	deps.Videos = videos.NewService(videos.Dependencies{
		Store:    s,
		Media:    media,
		Prober:   videos.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
		Defaults: defaults,
	})
	deps.Comments = comments.NewService(s, defaults)
	deps.Tweets = tweets.NewService(s, defaults)
	deps.Likes = likes.NewService(s, defaults)
	deps.Subscriptions = subscriptions.NewService(s, defaults)
	return deps, nil
}

func buildMediaStore(ctx context.Context, cfg config.Config) (storage.MediaStore, error) {
	if !cfg.ObjectStore.Enabled() {
		return storage.Unconfigured{}, nil
	}
	s3, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, fmt.Errorf("build media storage: %w", err)
	}
	return storage.NewBreakerStorage("s3", s3, cfg.MediaBreaker), nil
}
