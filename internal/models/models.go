package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the public projection of an account managed by the identity service.
type User struct {
	ID        string    `doc:"id" json:"id"`
	Username  string    `doc:"username" json:"username"`
	FullName  string    `doc:"fullName" json:"fullName"`
	Avatar    string    `doc:"avatar" json:"avatar"`
	Email     string    `doc:"email" json:"email,omitempty"`
	CreatedAt time.Time `doc:"createdAt" json:"createdAt"`
}

// OwnerProfile is the subset of a user joined into derived views.
type OwnerProfile struct {
	ID       string `doc:"id" json:"id"`
	Username string `doc:"username" json:"username"`
	FullName string `doc:"fullName" json:"fullName"`
	Avatar   string `doc:"avatar" json:"avatar"`
}

// MediaAsset describes a file held by the external media host.
type MediaAsset struct {
	URL       string `doc:"url" json:"url"`
	StorageID string `doc:"storageId" json:"storageId"`
}

// Video is a published (or draft) upload. Owner never changes after creation.
type Video struct {
	ID          string     `doc:"id" json:"id"`
	Title       string     `doc:"title" json:"title"`
	Description string     `doc:"description" json:"description"`
	Duration    float64    `doc:"duration" json:"duration"`
	VideoFile   MediaAsset `doc:"videoFile" json:"videoFile"`
	Thumbnail   MediaAsset `doc:"thumbnail" json:"thumbnail"`
	Owner       string     `doc:"owner" json:"owner"`
	IsPublished bool       `doc:"isPublished" json:"isPublished"`
	Views       int64      `doc:"views" json:"views"`
	CreatedAt   time.Time  `doc:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `doc:"updatedAt" json:"updatedAt"`
}

// Comment belongs to a video and an owner.
type Comment struct {
	ID        string    `doc:"id" json:"id"`
	Content   string    `doc:"content" json:"content"`
	Video     string    `doc:"video" json:"video"`
	Owner     string    `doc:"owner" json:"owner"`
	CreatedAt time.Time `doc:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `doc:"updatedAt" json:"updatedAt"`
}

// Tweet is a short text post.
type Tweet struct {
	ID        string    `doc:"id" json:"id"`
	Content   string    `doc:"content" json:"content"`
	Owner     string    `doc:"owner" json:"owner"`
	CreatedAt time.Time `doc:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `doc:"updatedAt" json:"updatedAt"`
}

// Like records that LikedBy likes exactly one target. Its presence is the liked state.
type Like struct {
	ID        string    `doc:"id" json:"id"`
	LikedBy   string    `doc:"likedBy" json:"likedBy"`
	Video     string    `doc:"video" json:"video,omitempty"`
	Comment   string    `doc:"comment" json:"comment,omitempty"`
	Tweet     string    `doc:"tweet" json:"tweet,omitempty"`
	CreatedAt time.Time `doc:"createdAt" json:"createdAt"`
}

// Subscription records that Subscriber follows Channel.
type Subscription struct {
	ID         string    `doc:"id" json:"id"`
	Subscriber string    `doc:"subscriber" json:"subscriber"`
	Channel    string    `doc:"channel" json:"channel"`
	CreatedAt  time.Time `doc:"createdAt" json:"createdAt"`
}

// TargetKind names the entity a like points at.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// Valid reports whether k is one of the likeable kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	}
	return false
}

// ToggleState is the post-toggle state of a presence-based relationship.
type ToggleState string

const (
	StateActive   ToggleState = "active"
	StateInactive ToggleState = "inactive"
)

// Active reports whether the relationship row exists after the toggle.
func (s ToggleState) Active() bool { return s == StateActive }

// ValidID reports whether id is a well-formed entity identifier.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}
