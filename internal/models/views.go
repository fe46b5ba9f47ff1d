package models

import "time"

// VideoView is a video as returned to readers, with its derived fields.
type VideoView struct {
	ID          string       `doc:"id" json:"id"`
	Title       string       `doc:"title" json:"title"`
	Description string       `doc:"description" json:"description"`
	Duration    float64      `doc:"duration" json:"duration"`
	VideoFile   MediaAsset   `doc:"videoFile" json:"videoFile"`
	Thumbnail   MediaAsset   `doc:"thumbnail" json:"thumbnail"`
	IsPublished bool         `doc:"isPublished" json:"isPublished"`
	Views       int64        `doc:"views" json:"views"`
	CreatedAt   time.Time    `doc:"createdAt" json:"createdAt"`
	Owner       OwnerProfile `doc:"owner" json:"owner"`
	LikesCount  int64        `doc:"likesCount" json:"likesCount"`
	IsLiked     bool         `doc:"isLiked" json:"isLiked"`
}

// CommentView is a comment with its owner profile and like state.
type CommentView struct {
	ID         string       `doc:"id" json:"id"`
	Content    string       `doc:"content" json:"content"`
	Video      string       `doc:"video" json:"video"`
	CreatedAt  time.Time    `doc:"createdAt" json:"createdAt"`
	Owner      OwnerProfile `doc:"owner" json:"owner"`
	LikesCount int64        `doc:"likesCount" json:"likesCount"`
	IsLiked    bool         `doc:"isLiked" json:"isLiked"`
}

// TweetView is a tweet with its owner profile and like state.
type TweetView struct {
	ID         string       `doc:"id" json:"id"`
	Content    string       `doc:"content" json:"content"`
	CreatedAt  time.Time    `doc:"createdAt" json:"createdAt"`
	Owner      OwnerProfile `doc:"owner" json:"owner"`
	LikesCount int64        `doc:"likesCount" json:"likesCount"`
	IsLiked    bool         `doc:"isLiked" json:"isLiked"`
}

// SubscriberSummary aggregates the subscribers of one channel.
type SubscriberSummary struct {
	TotalCount int64    `doc:"totalCount" json:"totalCount"`
	Usernames  []string `doc:"usernames" json:"usernames"`
}

// LikeResult is returned by like toggles.
type LikeResult struct {
	State      ToggleState `json:"state"`
	Liked      bool        `json:"liked"`
	LikesCount int64       `json:"likesCount"`
}

// SubscriptionResult is returned by subscription toggles.
type SubscriptionResult struct {
	State      ToggleState `json:"state"`
	Subscribed bool        `json:"subscribed"`
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Docs       []T   `json:"docs"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

// Empty reports whether the listing matched nothing at all.
func (p Page[T]) Empty() bool { return p.Total == 0 }
