package pipeline

import (
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
)

// Collection names understood by every store.
const (
	Users         = "users"
	Videos        = "videos"
	Comments      = "comments"
	Tweets        = "tweets"
	Likes         = "likes"
	Subscriptions = "subscriptions"
)

// Common field names.
const (
	FieldID          = "id"
	FieldOwner       = "owner"
	FieldCreatedAt   = "createdAt"
	FieldIsPublished = "isPublished"
)

// Sortable video fields.
const (
	SortCreatedAt = "createdAt"
	SortViews     = "views"
	SortDuration  = "duration"
)

// PublicProfile is the set of user fields exposed through joins and listings.
var PublicProfile = []string{"id", "username", "fullName", "avatar"}

// VideoQuery carries the recognised listing options for videos.
type VideoQuery struct {
	Text          string
	OwnerID       string
	PublishedOnly bool
	SortBy        string
	SortType      string
}

// ListVideos builds the listing pipeline for videos. Stage order is fixed:
// search, owner filter, published filter, sort.
func ListVideos(q VideoQuery) (Pipeline, error) {
	ownerID := strings.TrimSpace(q.OwnerID)
	if ownerID != "" && !models.ValidID(ownerID) {
		return nil, invalidID("owner", ownerID)
	}

	var p Pipeline
	if text := strings.TrimSpace(q.Text); text != "" {
		p = append(p, Search{Fields: []string{"title", "description"}, Text: text})
	}
	if ownerID != "" {
		p = append(p, Match{Field: FieldOwner, Value: ownerID})
	}
	if q.PublishedOnly {
		p = append(p, Match{Field: FieldIsPublished, Value: true})
	}
	p = append(p, Sort{Keys: []SortKey{{Field: sortField(q.SortBy), Desc: sortDesc(q.SortType)}}})
	return p, nil
}

// VideoComments lists the comments of one video, newest first.
func VideoComments(videoID string) (Pipeline, error) {
	if !models.ValidID(videoID) {
		return nil, invalidID("video", videoID)
	}
	return Pipeline{
		Match{Field: "video", Value: videoID},
		newest(),
	}, nil
}

// UserTweets lists the tweets of one user, newest first.
func UserTweets(ownerID string) (Pipeline, error) {
	if !models.ValidID(ownerID) {
		return nil, invalidID("user", ownerID)
	}
	return Pipeline{
		Match{Field: FieldOwner, Value: ownerID},
		newest(),
	}, nil
}

// LikedVideos lists the videos the actor has liked.
func LikedVideos(actorID string) (Pipeline, error) {
	if !models.ValidID(actorID) {
		return nil, invalidID("user", actorID)
	}
	return Pipeline{
		MatchRelated{
			Collection:   Likes,
			LocalField:   FieldID,
			ForeignField: "video",
			Where:        []Match{{Field: "likedBy", Value: actorID}},
		},
		newest(),
	}, nil
}

// ChannelSubscribers lists the public profiles of users subscribed to a channel.
func ChannelSubscribers(channelID string) (Pipeline, error) {
	if !models.ValidID(channelID) {
		return nil, invalidID("channel", channelID)
	}
	return Pipeline{
		MatchRelated{
			Collection:   Subscriptions,
			LocalField:   FieldID,
			ForeignField: "subscriber",
			Where:        []Match{{Field: "channel", Value: channelID}},
		},
		Sort{Keys: []SortKey{{Field: "username"}}},
		Project{Fields: PublicProfile},
	}, nil
}

// SubscribedChannels lists the public profiles of channels a user subscribes to.
func SubscribedChannels(subscriberID string) (Pipeline, error) {
	if !models.ValidID(subscriberID) {
		return nil, invalidID("subscriber", subscriberID)
	}
	return Pipeline{
		MatchRelated{
			Collection:   Subscriptions,
			LocalField:   FieldID,
			ForeignField: "channel",
			Where:        []Match{{Field: "subscriber", Value: subscriberID}},
		},
		Sort{Keys: []SortKey{{Field: "username"}}},
		Project{Fields: PublicProfile},
	}, nil
}

// SubscriberSummary folds the subscriptions of a channel into
// {totalCount, usernames}. It runs over the subscriptions collection and
// yields no document when the channel has no subscribers.
func SubscriberSummary(channelID string) (Pipeline, error) {
	if !models.ValidID(channelID) {
		return nil, invalidID("channel", channelID)
	}
	return Pipeline{
		Match{Field: "channel", Value: channelID},
		Lookup{
			From:         Users,
			LocalField:   "subscriber",
			ForeignField: FieldID,
			As:           "subscriber",
			Fields:       []string{"username"},
		},
		Group{
			CountAs: "totalCount",
			Push:    []Accumulator{{As: "usernames", Field: "subscriber.username"}},
		},
	}, nil
}

// ByIDs selects the documents with the given identifiers.
func ByIDs(ids []string) (Pipeline, error) {
	for _, id := range ids {
		if !models.ValidID(id) {
			return nil, invalidID("id", id)
		}
	}
	return Pipeline{MatchAny{Field: FieldID, Values: append([]string(nil), ids...)}}, nil
}

// CollectionFor maps a likeable kind to the collection holding it.
func CollectionFor(kind models.TargetKind) (string, bool) {
	if !kind.Valid() {
		return "", false
	}
	switch kind {
	case models.TargetVideo:
		return Videos, true
	case models.TargetComment:
		return Comments, true
	case models.TargetTweet:
		return Tweets, true
	}
	return "", false
}

func newest() Sort {
	return Sort{Keys: []SortKey{{Field: FieldCreatedAt, Desc: true}}}
}

func sortField(field string) string {
	switch strings.TrimSpace(field) {
	case SortViews:
		return SortViews
	case SortDuration:
		return SortDuration
	default:
		return SortCreatedAt
	}
}

func sortDesc(direction string) bool {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "asc", "ascending":
		return false
	default:
		return true
	}
}

func invalidID(field, value string) error {
	err := apperr.Newf(apperr.KindInvalidIdentifier, "invalid %s id %q", field, value)
	err.Fields = map[string]string{field: "must be a valid identifier"}
	return err
}
