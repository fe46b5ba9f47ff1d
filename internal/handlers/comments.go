package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/auth"
)

type contentRequest struct {
	Content string `json:"content"`
}

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	Comments CommentService
}

// List handles GET /api/v1/comment/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := h.Comments.List(ctx, chi.URLParam(r, "videoId"), q.Get("page"), q.Get("limit"), auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondPage(ctx, w, page, "Comments fetched successfully", "No comments found")
}

// Add handles POST /api/v1/comment/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment, err := h.Comments.Add(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "videoId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusCreated, comment, "Comment created successfully")
}

// Update handles PATCH /api/v1/comment/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment, err := h.Comments.Update(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "commentId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, comment, "Comment updated successfully")
}

// Delete handles DELETE /api/v1/comment/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Comments.Delete(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "commentId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, struct{}{}, "Comment deleted successfully")
}
