// Package tweets implements short text posts.
package tweets

import (
	"context"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/validation"
	"github.com/vidtube/backend/internal/views"
)

// Service exposes the tweet operations.
type Service struct {
	tweets   repositories.TweetRepository
	users    repositories.UserRepository
	pages    *paginate.Engine
	views    *views.Materializer
	defaults paginate.Defaults
}

// NewService constructs a tweet service over s.
func NewService(s store.Store, defaults paginate.Defaults) *Service {
	return &Service{
		tweets:   repositories.NewStoreTweetRepository(s),
		users:    repositories.NewStoreUserRepository(s),
		pages:    paginate.NewEngine(s),
		views:    views.NewMaterializer(s),
		defaults: defaults,
	}
}

type contentInput struct {
	Content string `json:"content" validate:"notblank,max=280"`
}

// Create posts a tweet on behalf of actor.
func (s *Service) Create(ctx context.Context, actor, content string) (models.Tweet, error) {
	if actor == "" {
		return models.Tweet{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if err := validation.Struct(contentInput{Content: content}); err != nil {
		return models.Tweet{}, err
	}
	return s.tweets.Create(ctx, models.Tweet{Content: strings.TrimSpace(content), Owner: actor})
}

// ListForUser returns the tweets of an existing user, newest first.
func (s *Service) ListForUser(ctx context.Context, userID, page, limit, viewer string) (models.Page[models.TweetView], error) {
	p, err := pipeline.UserTweets(userID)
	if err != nil {
		return models.Page[models.TweetView]{}, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return models.Page[models.TweetView]{}, err
	}
	params := paginate.ParseParams(page, limit, s.defaults)
	return views.List[models.TweetView](ctx, s.pages, s.views, models.TargetTweet, p, params, viewer)
}

// Update replaces the content of a tweet owned by actor.
func (s *Service) Update(ctx context.Context, actor, tweetID, content string) (models.Tweet, error) {
	if err := validation.Struct(contentInput{Content: content}); err != nil {
		return models.Tweet{}, err
	}
	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, err
	}
	if err := auth.Authorize(tweet.Owner, actor); err != nil {
		return models.Tweet{}, err
	}
	return s.tweets.UpdateContent(ctx, tweetID, strings.TrimSpace(content))
}

// Delete removes a tweet owned by actor and returns it.
func (s *Service) Delete(ctx context.Context, actor, tweetID string) (models.Tweet, error) {
	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, err
	}
	if err := auth.Authorize(tweet.Owner, actor); err != nil {
		return models.Tweet{}, err
	}
	if err := s.tweets.Delete(ctx, tweetID); err != nil {
		return models.Tweet{}, err
	}
	return tweet, nil
}
