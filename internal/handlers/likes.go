package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// LikeHandler serves the like endpoints.
type LikeHandler struct {
	Likes LikeService
}

// ToggleVideo handles POST /api/v1/like/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.TargetVideo, "videoId")
}

// ToggleComment handles POST /api/v1/like/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.TargetComment, "commentId")
}

// ToggleTweet handles POST /api/v1/like/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.TargetTweet, "tweetId")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.TargetKind, param string) {
	ctx := r.Context()
	result, err := h.Likes.Toggle(ctx, kind, chi.URLParam(r, param), auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	message := string(kind) + " unliked successfully"
	if result.Liked {
		message = string(kind) + " liked successfully"
	}
	respondData(ctx, w, http.StatusOK, result, message)
}

// LikedVideos handles GET /api/v1/like/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := h.Likes.LikedVideos(ctx, auth.IdentityFromContext(ctx), q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondPage(ctx, w, page, "Liked videos fetched successfully", "No liked videos found")
}
