package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/videos"
)

// VideoService captures the video operations served over HTTP.
type VideoService interface {
	List(ctx context.Context, in videos.ListInput, viewer string) (models.Page[models.VideoView], error)
	Get(ctx context.Context, id, viewer string) (models.VideoView, error)
	Publish(ctx context.Context, actor string, in videos.PublishInput) (models.Video, error)
	Update(ctx context.Context, actor, id string, in videos.UpdateInput) (models.Video, error)
	Delete(ctx context.Context, actor, id string) error
	TogglePublish(ctx context.Context, actor, id string) (bool, error)
}

// CommentService captures the comment operations served over HTTP.
type CommentService interface {
	List(ctx context.Context, videoID, page, limit, viewer string) (models.Page[models.CommentView], error)
	Add(ctx context.Context, actor, videoID, content string) (models.Comment, error)
	Update(ctx context.Context, actor, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, actor, commentID string) error
}

// TweetService captures the tweet operations served over HTTP.
type TweetService interface {
	Create(ctx context.Context, actor, content string) (models.Tweet, error)
	ListForUser(ctx context.Context, userID, page, limit, viewer string) (models.Page[models.TweetView], error)
	Update(ctx context.Context, actor, tweetID, content string) (models.Tweet, error)
	Delete(ctx context.Context, actor, tweetID string) (models.Tweet, error)
}

// LikeService captures the like operations served over HTTP.
type LikeService interface {
	Toggle(ctx context.Context, kind models.TargetKind, targetID, actor string) (models.LikeResult, error)
	LikedVideos(ctx context.Context, actor, page, limit string) (models.Page[models.VideoView], error)
}

// SubscriptionService captures the subscription operations served over HTTP.
type SubscriptionService interface {
	Toggle(ctx context.Context, channelID, actor string) (models.SubscriptionResult, error)
	Subscribers(ctx context.Context, channelID, page, limit string) (models.Page[models.OwnerProfile], error)
	SubscribedChannels(ctx context.Context, subscriberID, page, limit string) (models.Page[models.OwnerProfile], error)
	Summary(ctx context.Context, channelID string) (models.SubscriberSummary, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
