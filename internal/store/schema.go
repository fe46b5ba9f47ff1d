package store

import (
	"fmt"

	"github.com/vidtube/backend/internal/pipeline"
)

// Field maps a document path to its relational column.
type Field struct {
	Path   string
	Column string
}

// Reference declares that Field holds the id of a document in Collection.
// Deleting the referenced document deletes the referencing one.
type Reference struct {
	Field      string
	Collection string
}

// Collection describes one collection: its fields, unique keys and references.
// A unique key only applies when every one of its fields is set.
type Collection struct {
	Name       string
	Table      string
	Fields     []Field
	Unique     [][]string
	References []Reference
	Timestamps bool
}

// Column returns the column backing path.
func (c Collection) Column(path string) (string, bool) {
	for _, field := range c.Fields {
		if field.Path == path {
			return field.Column, true
		}
	}
	return "", false
}

// HasField reports whether path is a stored field.
func (c Collection) HasField(path string) bool {
	_, ok := c.Column(path)
	return ok
}

// Schema lists every collection known to the stores.
var Schema = map[string]Collection{
	pipeline.Users: {
		Name:  pipeline.Users,
		Table: "users",
		Fields: []Field{
			{"id", "id"},
			{"username", "username"},
			{"fullName", "full_name"},
			{"avatar", "avatar"},
			{"email", "email"},
			{"createdAt", "created_at"},
		},
		Unique: [][]string{{"username"}, {"email"}},
	},
	pipeline.Videos: {
		Name:  pipeline.Videos,
		Table: "videos",
		Fields: []Field{
			{"id", "id"},
			{"title", "title"},
			{"description", "description"},
			{"duration", "duration"},
			{"videoFile.url", "video_file_url"},
			{"videoFile.storageId", "video_file_storage_id"},
			{"thumbnail.url", "thumbnail_url"},
			{"thumbnail.storageId", "thumbnail_storage_id"},
			{"owner", "owner_id"},
			{"isPublished", "is_published"},
			{"views", "views"},
			{"createdAt", "created_at"},
			{"updatedAt", "updated_at"},
		},
		References: []Reference{{Field: "owner", Collection: pipeline.Users}},
		Timestamps: true,
	},
	pipeline.Comments: {
		Name:  pipeline.Comments,
		Table: "comments",
		Fields: []Field{
			{"id", "id"},
			{"content", "content"},
			{"video", "video_id"},
			{"owner", "owner_id"},
			{"createdAt", "created_at"},
			{"updatedAt", "updated_at"},
		},
		References: []Reference{
			{Field: "video", Collection: pipeline.Videos},
			{Field: "owner", Collection: pipeline.Users},
		},
		Timestamps: true,
	},
	pipeline.Tweets: {
		Name:  pipeline.Tweets,
		Table: "tweets",
		Fields: []Field{
			{"id", "id"},
			{"content", "content"},
			{"owner", "owner_id"},
			{"createdAt", "created_at"},
			{"updatedAt", "updated_at"},
		},
		References: []Reference{{Field: "owner", Collection: pipeline.Users}},
		Timestamps: true,
	},
	pipeline.Likes: {
		Name:  pipeline.Likes,
		Table: "likes",
		Fields: []Field{
			{"id", "id"},
			{"likedBy", "liked_by"},
			{"video", "video_id"},
			{"comment", "comment_id"},
			{"tweet", "tweet_id"},
			{"createdAt", "created_at"},
		},
		Unique: [][]string{{"likedBy", "video"}, {"likedBy", "comment"}, {"likedBy", "tweet"}},
		References: []Reference{
			{Field: "likedBy", Collection: pipeline.Users},
			{Field: "video", Collection: pipeline.Videos},
			{Field: "comment", Collection: pipeline.Comments},
			{Field: "tweet", Collection: pipeline.Tweets},
		},
	},
	pipeline.Subscriptions: {
		Name:  pipeline.Subscriptions,
		Table: "subscriptions",
		Fields: []Field{
			{"id", "id"},
			{"subscriber", "subscriber_id"},
			{"channel", "channel_id"},
			{"createdAt", "created_at"},
		},
		Unique: [][]string{{"subscriber", "channel"}},
		References: []Reference{
			{Field: "subscriber", Collection: pipeline.Users},
			{Field: "channel", Collection: pipeline.Users},
		},
	},
}

// Lookup returns the schema of a collection.
func Lookup(name string) (Collection, error) {
	c, ok := Schema[name]
	if !ok {
		return Collection{}, fmt.Errorf("unknown collection %q", name)
	}
	return c, nil
}
