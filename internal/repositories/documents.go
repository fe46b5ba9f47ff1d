package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/views"
)

// collection adapts one store collection to a typed model.
type collection[T any] struct {
	store  store.Store
	name   string
	entity string
}

func (c collection[T]) find(ctx context.Context, id string) (T, error) {
	var zero T
	if !models.ValidID(id) {
		return zero, apperr.Newf(apperr.KindInvalidIdentifier, "invalid %s id %q", c.entity, id)
	}
	doc, err := c.store.FindByID(ctx, c.name, id)
	if err != nil {
		return zero, translate(err, c.entity, id, "load")
	}
	return c.decode(doc)
}

func (c collection[T]) create(ctx context.Context, doc store.Document) (T, error) {
	var zero T
	created, err := c.store.Create(ctx, c.name, doc)
	if err != nil {
		return zero, translate(err, c.entity, doc.ID(), "create")
	}
	return c.decode(created)
}

func (c collection[T]) update(ctx context.Context, id string, patch store.Document) (T, error) {
	var zero T
	if !models.ValidID(id) {
		return zero, apperr.Newf(apperr.KindInvalidIdentifier, "invalid %s id %q", c.entity, id)
	}
	updated, err := c.store.UpdateByID(ctx, c.name, id, patch)
	if err != nil {
		return zero, translate(err, c.entity, id, "update")
	}
	return c.decode(updated)
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	if !models.ValidID(id) {
		return apperr.Newf(apperr.KindInvalidIdentifier, "invalid %s id %q", c.entity, id)
	}
	return translate(c.store.DeleteByID(ctx, c.name, id), c.entity, id, "delete")
}

func (c collection[T]) decode(doc store.Document) (T, error) {
	out, err := views.Decode[T](doc)
	if err != nil {
		return out, apperr.Wrap(apperr.KindStoreFailure, "failed to decode "+c.entity, err)
	}
	return out, nil
}

// StoreUserRepository reads users from the entity store.
type StoreUserRepository struct {
	users collection[models.User]
}

// NewStoreUserRepository constructs a user repository over s.
func NewStoreUserRepository(s store.Store) *StoreUserRepository {
	return &StoreUserRepository{users: collection[models.User]{store: s, name: pipeline.Users, entity: "user"}}
}

// FindByID fetches a user by id.
func (r *StoreUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.users.find(ctx, id)
}

// StoreVideoRepository persists videos in the entity store.
type StoreVideoRepository struct {
	videos collection[models.Video]
}

// NewStoreVideoRepository constructs a video repository over s.
func NewStoreVideoRepository(s store.Store) *StoreVideoRepository {
	return &StoreVideoRepository{videos: collection[models.Video]{store: s, name: pipeline.Videos, entity: "video"}}
}

// FindByID fetches a video by id regardless of its publish state.
func (r *StoreVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	return r.videos.find(ctx, id)
}

// Create inserts a video. Owner is required and never changes afterwards.
func (r *StoreVideoRepository) Create(ctx context.Context, v models.Video) (models.Video, error) {
	if !models.ValidID(v.Owner) {
		return models.Video{}, apperr.Newf(apperr.KindInvalidIdentifier, "invalid owner id %q", v.Owner)
	}
	doc := store.Document{
		"title":       v.Title,
		"description": v.Description,
		"duration":    v.Duration,
		"videoFile":   assetDocument(v.VideoFile),
		"thumbnail":   assetDocument(v.Thumbnail),
		"owner":       v.Owner,
		"isPublished": v.IsPublished,
		"views":       v.Views,
	}
	if v.ID != "" {
		doc["id"] = v.ID
	}
	return r.videos.create(ctx, doc)
}

// Update applies the non-nil members of patch.
func (r *StoreVideoRepository) Update(ctx context.Context, id string, patch VideoPatch) (models.Video, error) {
	changes := store.Document{}
	if patch.Title != nil {
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Thumbnail != nil {
		changes["thumbnail"] = assetDocument(*patch.Thumbnail)
	}
	if patch.IsPublished != nil {
		changes["isPublished"] = *patch.IsPublished
	}
	return r.videos.update(ctx, id, changes)
}

// Delete removes a video together with its comments and likes.
func (r *StoreVideoRepository) Delete(ctx context.Context, id string) error {
	return r.videos.delete(ctx, id)
}

// StoreCommentRepository persists comments in the entity store.
type StoreCommentRepository struct {
	comments collection[models.Comment]
}

// NewStoreCommentRepository constructs a comment repository over s.
func NewStoreCommentRepository(s store.Store) *StoreCommentRepository {
	return &StoreCommentRepository{comments: collection[models.Comment]{store: s, name: pipeline.Comments, entity: "comment"}}
}

// FindByID fetches a comment by id.
func (r *StoreCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	return r.comments.find(ctx, id)
}

// Create inserts a comment on a video.
func (r *StoreCommentRepository) Create(ctx context.Context, c models.Comment) (models.Comment, error) {
	return r.comments.create(ctx, store.Document{"content": c.Content, "video": c.Video, "owner": c.Owner})
}

// UpdateContent replaces the comment text.
func (r *StoreCommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	return r.comments.update(ctx, id, store.Document{"content": content})
}

// Delete removes a comment and its likes.
func (r *StoreCommentRepository) Delete(ctx context.Context, id string) error {
	return r.comments.delete(ctx, id)
}

// StoreTweetRepository persists tweets in the entity store.
type StoreTweetRepository struct {
	tweets collection[models.Tweet]
}

// NewStoreTweetRepository constructs a tweet repository over s.
func NewStoreTweetRepository(s store.Store) *StoreTweetRepository {
	return &StoreTweetRepository{tweets: collection[models.Tweet]{store: s, name: pipeline.Tweets, entity: "tweet"}}
}

// FindByID fetches a tweet by id.
func (r *StoreTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	return r.tweets.find(ctx, id)
}

// Create inserts a tweet.
func (r *StoreTweetRepository) Create(ctx context.Context, t models.Tweet) (models.Tweet, error) {
	return r.tweets.create(ctx, store.Document{"content": t.Content, "owner": t.Owner})
}

// UpdateContent replaces the tweet text.
func (r *StoreTweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	return r.tweets.update(ctx, id, store.Document{"content": content})
}

// Delete removes a tweet and its likes.
func (r *StoreTweetRepository) Delete(ctx context.Context, id string) error {
	return r.tweets.delete(ctx, id)
}

func assetDocument(a models.MediaAsset) map[string]any {
	return map[string]any{"url": a.URL, "storageId": a.StorageID}
}

var (
	_ UserRepository    = (*StoreUserRepository)(nil)
	_ VideoRepository   = (*StoreVideoRepository)(nil)
	_ CommentRepository = (*StoreCommentRepository)(nil)
	_ TweetRepository   = (*StoreTweetRepository)(nil)
)
