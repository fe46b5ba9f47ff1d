package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserRepository reads accounts owned by the identity service.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// VideoPatch lists the mutable video fields; nil members are left unchanged.
type VideoPatch struct {
	Title       *string
	Description *string
	Thumbnail   *models.MediaAsset
	IsPublished *bool
}

// VideoRepository persists videos.
type VideoRepository interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	Create(ctx context.Context, video models.Video) (models.Video, error)
	Update(ctx context.Context, id string, patch VideoPatch) (models.Video, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetRepository persists tweets.
type TweetRepository interface {
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Create(ctx context.Context, tweet models.Tweet) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}
