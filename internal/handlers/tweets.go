package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/auth"
)

// TweetHandler serves the tweet endpoints.
type TweetHandler struct {
	Tweets TweetService
}

// Create handles POST /api/v1/tweet.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	tweet, err := h.Tweets.Create(ctx, auth.IdentityFromContext(ctx), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusCreated, tweet, "Tweet created")
}

// ListForUser handles GET /api/v1/tweet/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := h.Tweets.ListForUser(ctx, chi.URLParam(r, "userId"), q.Get("page"), q.Get("limit"), auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondPage(ctx, w, page, "Tweets fetched successfully", "No tweets found")
}

// Update handles PATCH /api/v1/tweet/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	tweet, err := h.Tweets.Update(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "tweetId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, tweet, "Tweet updated")
}

// Delete handles DELETE /api/v1/tweet/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweet, err := h.Tweets.Delete(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "tweetId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, tweet, "Tweet deleted successfully")
}
