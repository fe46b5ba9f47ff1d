// Package views joins owner profiles, like counts and viewer flags onto
// videos, comments and tweets at read time.
package views

import (
	"context"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

// Derived field names added by Augment.
const (
	FieldLikesCount = "likesCount"
	FieldIsLiked    = "isLiked"
)

// Materializer computes derived views. It never writes.
type Materializer struct {
	store store.Store
}

// NewMaterializer constructs a materializer over s.
func NewMaterializer(s store.Store) *Materializer {
	return &Materializer{store: s}
}

// Augment returns p extended with the owner profile join, the like count and,
// when viewer is set, the viewer's like flag. Anonymous viewers get isLiked=false.
func (m *Materializer) Augment(p pipeline.Pipeline, kind models.TargetKind, viewer string) pipeline.Pipeline {
	field := string(kind)
	stages := []pipeline.Stage{
		pipeline.Lookup{
			From:         pipeline.Users,
			LocalField:   pipeline.FieldOwner,
			ForeignField: pipeline.FieldID,
			As:           pipeline.FieldOwner,
			Fields:       pipeline.PublicProfile,
		},
		pipeline.Count{
			From:         pipeline.Likes,
			LocalField:   pipeline.FieldID,
			ForeignField: field,
			As:           FieldLikesCount,
		},
	}
	if viewer != "" {
		stages = append(stages, pipeline.Exists{
			From:         pipeline.Likes,
			LocalField:   pipeline.FieldID,
			ForeignField: field,
			Where:        []pipeline.Match{{Field: "likedBy", Value: viewer}},
			As:           FieldIsLiked,
		})
	}
	return p.Append(stages...)
}

// Materialize returns the derived views of the given documents in the order of ids.
// Unknown ids are skipped and an empty input never reaches the store.
func (m *Materializer) Materialize(ctx context.Context, kind models.TargetKind, ids []string, viewer string) ([]store.Document, error) {
	if len(ids) == 0 {
		return []store.Document{}, nil
	}
	collection, ok := pipeline.CollectionFor(kind)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidationFailed, "unsupported target kind %q", kind)
	}

	p, err := pipeline.ByIDs(ids)
	if err != nil {
		return nil, err
	}
	docs, err := m.store.Aggregate(ctx, collection, m.Augment(p, kind, viewer))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreFailure, "failed to load "+collection, err)
	}

	byID := make(map[string]store.Document, len(docs))
	for _, doc := range docs {
		Anonymize(doc, viewer)
		byID[doc.ID()] = doc
	}
	ordered := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}

// Anonymize sets isLiked=false on documents read without a viewer.
func Anonymize(doc store.Document, viewer string) {
	if viewer == "" {
		doc[FieldIsLiked] = false
	}
}
