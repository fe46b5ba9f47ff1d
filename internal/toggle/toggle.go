// Package toggle implements presence-based boolean relationships: a like or
// subscription is active while its row exists and inactive once it is gone.
package toggle

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

const subscriptionLabel = "subscription"

// Engine flips likes and subscriptions. It relies on the store's unique keys
// and treats the two concurrent-toggle races as no-ops.
type Engine struct {
	store store.Store
}

// NewEngine constructs a toggle engine over s.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// ToggleLike likes or unlikes the target on behalf of actor. Unpublished
// videos, and the comments under them, are only visible to, and therefore
// only likeable by, the video's owner.
func (e *Engine) ToggleLike(ctx context.Context, kind models.TargetKind, targetID, actor string) (models.ToggleState, error) {
	collection, ok := pipeline.CollectionFor(kind)
	if !ok {
		return "", apperr.Newf(apperr.KindValidationFailed, "unsupported like target %q", kind)
	}
	if !models.ValidID(targetID) {
		return "", apperr.Newf(apperr.KindInvalidIdentifier, "invalid %s id %q", kind, targetID)
	}
	if !models.ValidID(actor) {
		return "", apperr.Newf(apperr.KindInvalidIdentifier, "invalid user id %q", actor)
	}

	target, err := e.resolve(ctx, collection, targetID)
	if err != nil {
		return "", err
	}
	video := target
	if kind == models.TargetComment {
		if video, err = e.resolve(ctx, pipeline.Videos, target.String("video")); err != nil {
			return "", apperr.Newf(apperr.KindTargetNotFound, "%s %s not found", kind, targetID)
		}
	}
	if kind != models.TargetTweet && !visible(video, actor) {
		return "", apperr.Newf(apperr.KindTargetNotFound, "%s %s not found", kind, targetID)
	}

	key := store.Filter{"likedBy": actor, string(kind): targetID}
	return e.toggle(ctx, string(kind), pipeline.Likes, key)
}

// ToggleSubscription subscribes actor to channel or removes the subscription.
// Subscribing to oneself is rejected.
func (e *Engine) ToggleSubscription(ctx context.Context, channelID, actor string) (models.ToggleState, error) {
	if !models.ValidID(channelID) {
		return "", apperr.Newf(apperr.KindInvalidIdentifier, "invalid channel id %q", channelID)
	}
	if !models.ValidID(actor) {
		return "", apperr.Newf(apperr.KindInvalidIdentifier, "invalid user id %q", actor)
	}
	if channelID == actor {
		err := apperr.New(apperr.KindValidationFailed, "cannot subscribe to your own channel")
		err.Fields = map[string]string{"channelId": "must differ from the subscriber"}
		return "", err
	}

	if _, err := e.resolve(ctx, pipeline.Users, channelID); err != nil {
		return "", err
	}

	key := store.Filter{"subscriber": actor, "channel": channelID}
	return e.toggle(ctx, subscriptionLabel, pipeline.Subscriptions, key)
}

func visible(video store.Document, viewer string) bool {
	return video.Bool(pipeline.FieldIsPublished) || video.String(pipeline.FieldOwner) == viewer
}

func (e *Engine) resolve(ctx context.Context, collection, id string) (store.Document, error) {
	doc, err := e.store.FindByID(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Newf(apperr.KindTargetNotFound, "%s %s not found", collection, id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreFailure, "failed to load "+collection, err)
	}
	return doc, nil
}

func (e *Engine) toggle(ctx context.Context, label, collection string, key store.Filter) (models.ToggleState, error) {
	logger := logging.FromContext(ctx)

	existing, err := e.store.FindOne(ctx, collection, key)
	switch {
	case err == nil:
		err = e.store.DeleteByID(ctx, collection, existing.ID())
		switch {
		case err == nil:
		case errors.Is(err, store.ErrNotFound):
			logger.Debug("toggle delete raced with another delete", "kind", label, "id", existing.ID())
			metrics.RecordToggleRace(label, "delete_missing")
		default:
			return "", apperr.Wrap(apperr.KindStoreFailure, "failed to remove "+label, err)
		}
		metrics.RecordToggle(label, string(models.StateInactive))
		return models.StateInactive, nil

	case errors.Is(err, store.ErrNotFound):
		_, err = e.store.Create(ctx, collection, store.Document(key))
		switch {
		case err == nil:
		case errors.Is(err, store.ErrConflict):
			logger.Debug("toggle create raced with another create", "kind", label)
			metrics.RecordToggleRace(label, "create_conflict")
		case errors.Is(err, store.ErrNotFound):
			return "", apperr.Wrap(apperr.KindTargetNotFound, label+" target no longer exists", err)
		default:
			return "", apperr.Wrap(apperr.KindStoreFailure, "failed to create "+label, err)
		}
		metrics.RecordToggle(label, string(models.StateActive))
		return models.StateActive, nil

	default:
		return "", apperr.Wrap(apperr.KindStoreFailure, "failed to look up "+label, err)
	}
}
