// Package comments implements the comment thread of a video.
package comments

import (
	"context"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/validation"
	"github.com/vidtube/backend/internal/views"
)

// Service exposes the comment operations.
type Service struct {
	comments repositories.CommentRepository
	videos   repositories.VideoRepository
	pages    *paginate.Engine
	views    *views.Materializer
	defaults paginate.Defaults
}

// NewService constructs a comment service over s.
func NewService(s store.Store, defaults paginate.Defaults) *Service {
	return &Service{
		comments: repositories.NewStoreCommentRepository(s),
		videos:   repositories.NewStoreVideoRepository(s),
		pages:    paginate.NewEngine(s),
		views:    views.NewMaterializer(s),
		defaults: defaults,
	}
}

type contentInput struct {
	Content string `json:"content" validate:"notblank,max=1000"`
}

type addInput struct {
	VideoID string `json:"videoId" validate:"entityid"`
	Content string `json:"content" validate:"notblank,max=1000"`
}

// List returns the comments of a visible video, newest first.
func (s *Service) List(ctx context.Context, videoID, page, limit, viewer string) (models.Page[models.CommentView], error) {
	if _, err := s.visibleVideo(ctx, videoID, viewer); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	p, err := pipeline.VideoComments(videoID)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	params := paginate.ParseParams(page, limit, s.defaults)
	return views.List[models.CommentView](ctx, s.pages, s.views, models.TargetComment, p, params, viewer)
}

// Add posts a comment on a video the actor can see.
func (s *Service) Add(ctx context.Context, actor, videoID, content string) (models.Comment, error) {
	if actor == "" {
		return models.Comment{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if err := validation.Struct(addInput{VideoID: videoID, Content: content}); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.visibleVideo(ctx, videoID, actor); err != nil {
		return models.Comment{}, err
	}
	comment, err := s.comments.Create(ctx, models.Comment{Content: strings.TrimSpace(content), Video: videoID, Owner: actor})
	if err != nil {
		return models.Comment{}, err
	}
	logging.FromContext(ctx).Debug("comment added", "comment_id", comment.ID, "video_id", videoID)
	return comment, nil
}

// Update replaces the content of a comment owned by actor.
func (s *Service) Update(ctx context.Context, actor, commentID, content string) (models.Comment, error) {
	if err := validation.Struct(contentInput{Content: content}); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.owned(ctx, actor, commentID); err != nil {
		return models.Comment{}, err
	}
	return s.comments.UpdateContent(ctx, commentID, strings.TrimSpace(content))
}

// Delete removes a comment owned by actor.
func (s *Service) Delete(ctx context.Context, actor, commentID string) error {
	if _, err := s.owned(ctx, actor, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *Service) owned(ctx context.Context, actor, commentID string) (models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if err := auth.Authorize(comment.Owner, actor); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// visibleVideo loads the video, hiding unpublished ones from everyone but the owner.
func (s *Service) visibleVideo(ctx context.Context, videoID, viewer string) (models.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if !video.IsPublished && video.Owner != viewer {
		return models.Video{}, apperr.Newf(apperr.KindNotFound, "video %s not found", videoID)
	}
	return video, nil
}
