package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/videos"
)

// VideoHandler serves the video endpoints.
type VideoHandler struct {
	Videos         VideoService
	UploadDir      string
	MaxUploadBytes int64
}

// List handles GET /api/v1/video.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := h.Videos.List(ctx, videos.ListInput{
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
		UserID:   q.Get("userId"),
	}, auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondPage(ctx, w, page, "Videos fetched successfully", "No videos found")
}

// Get handles GET /api/v1/video/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, err := h.Videos.Get(ctx, chi.URLParam(r, "videoId"), auth.IdentityFromContext(ctx))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, video, "Video fetched successfully")
}

// Publish handles POST /api/v1/video as a multipart upload carrying
// title, description, videoFile and thumbnail.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	files, err := stageUploads(w, r, h.UploadDir, h.MaxUploadBytes, "videoFile", "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer files.cleanup()

	video, err := h.Videos.Publish(ctx, auth.IdentityFromContext(ctx), videos.PublishInput{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		VideoPath:     files["videoFile"],
		ThumbnailPath: files["thumbnail"],
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusCreated, video, "Video uploaded successfully")
}

// Update handles PATCH /api/v1/video/{videoId} as a multipart form with an
// optional replacement thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	files, err := stageUploads(w, r, h.UploadDir, h.MaxUploadBytes, "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer files.cleanup()

	video, err := h.Videos.Update(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "videoId"), videos.UpdateInput{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		ThumbnailPath: files["thumbnail"],
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/video/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Videos.Delete(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, struct{}{}, "Video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/video/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	published, err := h.Videos.TogglePublish(ctx, auth.IdentityFromContext(ctx), chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "Video publish state toggled")
}
