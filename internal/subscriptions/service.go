// Package subscriptions implements channel subscriptions and the subscriber listings.
package subscriptions

import (
	"context"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/toggle"
	"github.com/vidtube/backend/internal/views"
)

// Service exposes the subscription operations.
type Service struct {
	store    store.Store
	users    repositories.UserRepository
	toggles  *toggle.Engine
	pages    *paginate.Engine
	defaults paginate.Defaults
}

// NewService constructs a subscription service over s.
func NewService(s store.Store, defaults paginate.Defaults) *Service {
	return &Service{
		store:    s,
		users:    repositories.NewStoreUserRepository(s),
		toggles:  toggle.NewEngine(s),
		pages:    paginate.NewEngine(s),
		defaults: defaults,
	}
}

// Toggle subscribes actor to channelID, or unsubscribes when already subscribed.
func (s *Service) Toggle(ctx context.Context, channelID, actor string) (result models.SubscriptionResult, err error) {
	ctx, span := logging.StartSpan(ctx, "subscriptions.toggle")
	defer func() { span.Fail(err); span.End() }()

	if actor == "" {
		return models.SubscriptionResult{}, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	state, err := s.toggles.ToggleSubscription(ctx, channelID, actor)
	if err != nil {
		return models.SubscriptionResult{}, err
	}
	return models.SubscriptionResult{State: state, Subscribed: state.Active()}, nil
}

// Subscribers lists the public profiles subscribed to channelID, by username.
func (s *Service) Subscribers(ctx context.Context, channelID, page, limit string) (models.Page[models.OwnerProfile], error) {
	p, err := pipeline.ChannelSubscribers(channelID)
	if err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}
	return s.profiles(ctx, channelID, p, page, limit)
}

// SubscribedChannels lists the public profiles of the channels subscriberID follows.
func (s *Service) SubscribedChannels(ctx context.Context, subscriberID, page, limit string) (models.Page[models.OwnerProfile], error) {
	p, err := pipeline.SubscribedChannels(subscriberID)
	if err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}
	return s.profiles(ctx, subscriberID, p, page, limit)
}

// Summary returns the subscriber count and usernames of channelID. A channel
// without subscribers yields a zero count and an empty list.
func (s *Service) Summary(ctx context.Context, channelID string) (models.SubscriberSummary, error) {
	p, err := pipeline.SubscriberSummary(channelID)
	if err != nil {
		return models.SubscriberSummary{}, err
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return models.SubscriberSummary{}, err
	}
	docs, err := s.store.Aggregate(ctx, pipeline.Subscriptions, p)
	if err != nil {
		return models.SubscriberSummary{}, apperr.Wrap(apperr.KindStoreFailure, "failed to summarize subscribers", err)
	}
	summary := models.SubscriberSummary{Usernames: []string{}}
	if len(docs) == 0 {
		return summary, nil
	}
	decoded, err := views.Decode[models.SubscriberSummary](docs[0])
	if err != nil {
		return models.SubscriberSummary{}, apperr.Wrap(apperr.KindStoreFailure, "failed to decode subscriber summary", err)
	}
	if decoded.Usernames == nil {
		decoded.Usernames = summary.Usernames
	}
	return decoded, nil
}

func (s *Service) profiles(ctx context.Context, userID string, p pipeline.Pipeline, page, limit string) (models.Page[models.OwnerProfile], error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}
	params := paginate.ParseParams(page, limit, s.defaults)
	result, err := s.pages.Run(ctx, pipeline.Users, p, params)
	if err != nil {
		return models.Page[models.OwnerProfile]{}, err
	}
	out, err := views.DecodePage[models.OwnerProfile](result)
	if err != nil {
		return models.Page[models.OwnerProfile]{}, apperr.Wrap(apperr.KindStoreFailure, "failed to decode profiles", err)
	}
	return out, nil
}
