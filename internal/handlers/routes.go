package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidtube/backend/internal/middleware"
)

const defaultMaxUploadBytes = 512 << 20

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger         *slog.Logger
	Verifier       middleware.TokenVerifier
	ToggleLimiter  middleware.RateLimiter
	CORSOrigins    []string
	UploadDir      string
	MaxUploadBytes int64

	Videos        VideoService
	Comments      CommentService
	Tweets        TweetService
	Likes         LikeService
	Subscriptions SubscriptionService
	Store         Pinger
}

// NewRouter wires HTTP handlers under /api/v1 plus /metrics.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	health := HealthHandler{Store: deps.Store}
	videos := VideoHandler{Videos: deps.Videos, UploadDir: deps.UploadDir, MaxUploadBytes: maxUpload}
	comments := CommentHandler{Comments: deps.Comments}
	tweets := TweetHandler{Tweets: deps.Tweets}
	likes := LikeHandler{Likes: deps.Likes}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	throttle := middleware.Throttle(deps.ToggleLimiter, "toggle")

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Handle)
		r.Get("/healthcheck/ready", health.Ready)

		r.Group(func(r chi.Router) {
			if deps.Verifier != nil {
				r.Use(middleware.Authenticate(deps.Verifier))
			}

			r.Get("/video", videos.List)
			r.Get("/video/{videoId}", videos.Get)
			r.Get("/comment/{videoId}", comments.List)
			r.Get("/tweet/user/{userId}", tweets.ListForUser)
			r.Get("/subscribe/c/{channelId}", subscriptions.Subscribers)
			r.Get("/subscribe/c/{channelId}/summary", subscriptions.Summary)
			r.Get("/subscribe/u/{subscriberId}", subscriptions.SubscribedChannels)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireIdentity)

				r.Post("/video", videos.Publish)
				r.Patch("/video/{videoId}", videos.Update)
				r.Delete("/video/{videoId}", videos.Delete)
				r.Patch("/video/toggle/publish/{videoId}", videos.TogglePublish)

				r.Post("/comment/{videoId}", comments.Add)
				r.Patch("/comment/c/{commentId}", comments.Update)
				r.Delete("/comment/c/{commentId}", comments.Delete)

				r.Post("/tweet", tweets.Create)
				r.Patch("/tweet/{tweetId}", tweets.Update)
				r.Delete("/tweet/{tweetId}", tweets.Delete)

				r.Get("/like/videos", likes.LikedVideos)

				r.Group(func(r chi.Router) {
					r.Use(throttle)
					r.Post("/like/toggle/v/{videoId}", likes.ToggleVideo)
					r.Post("/like/toggle/c/{commentId}", likes.ToggleComment)
					r.Post("/like/toggle/t/{tweetId}", likes.ToggleTweet)
					r.Post("/subscribe/c/{channelId}", subscriptions.Toggle)
				})
			})
		})
	})

	return r
}
