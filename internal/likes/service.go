// Package likes implements like toggles and the liked-videos listing.
package likes

import (
	"context"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/toggle"
	"github.com/vidtube/backend/internal/views"
)

// Service exposes the like operations.
type Service struct {
	toggles  *toggle.Engine
	pages    *paginate.Engine
	views    *views.Materializer
	defaults paginate.Defaults
}

// NewService constructs a like service over s.
func NewService(s store.Store, defaults paginate.Defaults) *Service {
	return &Service{
		toggles:  toggle.NewEngine(s),
		pages:    paginate.NewEngine(s),
		views:    views.NewMaterializer(s),
		defaults: defaults,
	}
}

type likeCount struct {
	LikesCount int64 `doc:"likesCount"`
}

// Toggle likes or unlikes a video, comment or tweet and reports the resulting
// state together with the target's like count.
func (s *Service) Toggle(ctx context.Context, kind models.TargetKind, targetID, actor string) (result models.LikeResult, err error) {
	ctx, span := logging.StartSpan(ctx, "likes.toggle")
	defer func() { span.Fail(err); span.End() }()

	if actor == "" {
		return models.LikeResult{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	state, err := s.toggles.ToggleLike(ctx, kind, targetID, actor)
	if err != nil {
		return models.LikeResult{}, err
	}

	count, err := views.One[likeCount](ctx, s.views, kind, targetID, actor)
	if apperr.IsNotFound(err) {
		// Target deleted between the toggle and the recount.
		return models.LikeResult{State: state, Liked: state.Active()}, nil
	}
	if err != nil {
		return models.LikeResult{}, err
	}
	return models.LikeResult{State: state, Liked: state.Active(), LikesCount: count.LikesCount}, nil
}

// LikedVideos lists the videos actor has liked, newest video first.
func (s *Service) LikedVideos(ctx context.Context, actor, page, limit string) (models.Page[models.VideoView], error) {
	if actor == "" {
		return models.Page[models.VideoView]{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	p, err := pipeline.LikedVideos(actor)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	params := paginate.ParseParams(page, limit, s.defaults)
	return views.List[models.VideoView](ctx, s.pages, s.views, models.TargetVideo, p, params, actor)
}
