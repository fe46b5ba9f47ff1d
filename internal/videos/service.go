// Package videos implements listing, publishing and owner-only management of videos.
package videos

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/validation"
	"github.com/vidtube/backend/internal/views"
)

// Dependencies wires a Service.
type Dependencies struct {
	Store    store.Store
	Videos   repositories.VideoRepository
	Media    storage.MediaStore
	Prober   DurationProber
	Defaults paginate.Defaults
}

// Service exposes the video operations.
type Service struct {
	videos   repositories.VideoRepository
	pages    *paginate.Engine
	views    *views.Materializer
	media    storage.MediaStore
	prober   DurationProber
	defaults paginate.Defaults
}

// NewService constructs a video service.
func NewService(deps Dependencies) *Service {
	media := deps.Media
	if media == nil {
		media = storage.Unconfigured{}
	}
	videos := deps.Videos
	if videos == nil {
		videos = repositories.NewStoreVideoRepository(deps.Store)
	}
	return &Service{
		videos:   videos,
		pages:    paginate.NewEngine(deps.Store),
		views:    views.NewMaterializer(deps.Store),
		media:    media,
		prober:   deps.Prober,
		defaults: deps.Defaults,
	}
}

// ListInput holds the raw query values of a listing request.
type ListInput struct {
	Page     string
	Limit    string
	Query    string
	SortBy   string
	SortType string
	UserID   string
}

// PublishInput describes a new upload staged on local disk.
type PublishInput struct {
	Title         string `json:"title" validate:"notblank,max=200"`
	Description   string `json:"description" validate:"notblank,max=5000"`
	VideoPath     string `json:"videoFile" validate:"notblank"`
	ThumbnailPath string `json:"thumbnail" validate:"notblank"`
}

// UpdateInput replaces the title and description and optionally the thumbnail.
type UpdateInput struct {
	Title         string `json:"title" validate:"notblank,max=200"`
	Description   string `json:"description" validate:"notblank,max=5000"`
	ThumbnailPath string `json:"thumbnail"`
}

// List returns a page of videos. Only published videos are listed, except when
// a viewer lists their own channel.
func (s *Service) List(ctx context.Context, in ListInput, viewer string) (page models.Page[models.VideoView], err error) {
	ctx, span := logging.StartSpan(ctx, "videos.list")
	defer func() { span.Fail(err); span.End() }()

	ownChannel := in.UserID != "" && in.UserID == viewer
	p, err := pipeline.ListVideos(pipeline.VideoQuery{
		Text:          in.Query,
		OwnerID:       in.UserID,
		PublishedOnly: !ownChannel,
		SortBy:        in.SortBy,
		SortType:      in.SortType,
	})
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	params := paginate.ParseParams(in.Page, in.Limit, s.defaults)
	return views.List[models.VideoView](ctx, s.pages, s.views, models.TargetVideo, p, params, viewer)
}

// Get returns one video with its derived fields. Unpublished videos are only
// visible to their owner.
func (s *Service) Get(ctx context.Context, id, viewer string) (models.VideoView, error) {
	if !models.ValidID(id) {
		return models.VideoView{}, apperr.Newf(apperr.KindInvalidIdentifier, "invalid video id %q", id)
	}
	video, err := views.One[models.VideoView](ctx, s.views, models.TargetVideo, id, viewer)
	if err != nil {
		return models.VideoView{}, err
	}
	if !video.IsPublished && video.Owner.ID != viewer {
		return models.VideoView{}, apperr.Newf(apperr.KindNotFound, "video %s not found", id)
	}
	return video, nil
}

// Publish uploads the video file and thumbnail concurrently, records the video
// as published and reads it back.
func (s *Service) Publish(ctx context.Context, actor string, in PublishInput) (video models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "videos.publish")
	defer func() { span.Fail(err); span.End() }()

	if actor == "" {
		return models.Video{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if err := validation.Struct(in); err != nil {
		return models.Video{}, err
	}

	var (
		duration  float64
		videoFile models.MediaAsset
		thumbnail models.MediaAsset
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		duration = s.probe(gctx, in.VideoPath)
		asset, err := s.media.Store(gctx, in.VideoPath)
		if err != nil {
			return apperr.Wrap(apperr.KindStoreFailure, "failed to upload video file", err)
		}
		videoFile = asset
		return nil
	})
	g.Go(func() error {
		asset, err := s.media.Store(gctx, in.ThumbnailPath)
		if err != nil {
			return apperr.Wrap(apperr.KindStoreFailure, "failed to upload thumbnail", err)
		}
		thumbnail = asset
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Video{}, err
	}

	created, err := s.videos.Create(ctx, models.Video{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Duration:    duration,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Owner:       actor,
		IsPublished: true,
	})
	if err != nil {
		return models.Video{}, err
	}

	stored, err := s.videos.FindByID(ctx, created.ID)
	if apperr.IsNotFound(err) {
		return models.Video{}, apperr.Wrap(apperr.KindStoreFailure, "video upload failed, please try again", err)
	}
	if err != nil {
		return models.Video{}, err
	}
	logging.FromContext(ctx).Info("video published", "video_id", stored.ID, "owner", actor)
	return stored, nil
}

// Update changes the title and description and, when a new thumbnail is
// supplied, replaces it and deletes the previous one from the media host.
func (s *Service) Update(ctx context.Context, actor, id string, in UpdateInput) (video models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, "videos.update")
	defer func() { span.Fail(err); span.End() }()

	if err := validation.Struct(in); err != nil {
		return models.Video{}, err
	}
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return models.Video{}, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	patch := repositories.VideoPatch{Title: &title, Description: &description}
	if strings.TrimSpace(in.ThumbnailPath) != "" {
		thumbnail, err := s.media.Store(ctx, in.ThumbnailPath)
		if err != nil {
			return models.Video{}, apperr.Wrap(apperr.KindStoreFailure, "failed to upload thumbnail", err)
		}
		patch.Thumbnail = &thumbnail
	}

	updated, err := s.videos.Update(ctx, id, patch)
	if err != nil {
		return models.Video{}, err
	}

	if patch.Thumbnail != nil && current.Thumbnail.StorageID != "" {
		if err := s.media.Delete(ctx, current.Thumbnail.StorageID); err != nil {
			return models.Video{}, apperr.Wrap(apperr.KindStoreFailure, "video updated but the previous thumbnail could not be removed", err)
		}
	}
	return updated, nil
}

// Delete removes the video document, which cascades to its comments and likes,
// and then both media assets.
func (s *Service) Delete(ctx context.Context, actor, id string) (err error) {
	ctx, span := logging.StartSpan(ctx, "videos.delete")
	defer func() { span.Fail(err); span.End() }()

	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		return err
	}
	for _, storageID := range []string{current.VideoFile.StorageID, current.Thumbnail.StorageID} {
		if storageID == "" {
			continue
		}
		if err := s.media.Delete(ctx, storageID); err != nil {
			return apperr.Wrap(apperr.KindStoreFailure, "video deleted but its media could not be removed", err)
		}
	}
	return nil
}

// TogglePublish flips the publish flag and returns the new value.
func (s *Service) TogglePublish(ctx context.Context, actor, id string) (bool, error) {
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return false, err
	}
	next := !current.IsPublished
	updated, err := s.videos.Update(ctx, id, repositories.VideoPatch{IsPublished: &next})
	if err != nil {
		return false, err
	}
	return updated.IsPublished, nil
}

// owned loads the video and applies the ownership guard.
func (s *Service) owned(ctx context.Context, actor, id string) (models.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return models.Video{}, err
	}
	if err := auth.Authorize(video.Owner, actor); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

func (s *Service) probe(ctx context.Context, path string) float64 {
	if s.prober == nil {
		return 0
	}
	seconds, err := s.prober.Probe(ctx, path)
	if err != nil {
		logging.FromContext(ctx).Warn("probe video duration", "error", err)
		return 0
	}
	return seconds
}
