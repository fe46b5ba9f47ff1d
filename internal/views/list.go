package views

import (
	"context"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
)

// List augments p for kind, runs it through the pagination engine and decodes
// the page into T.
func List[T any](ctx context.Context, pages *paginate.Engine, m *Materializer, kind models.TargetKind, p pipeline.Pipeline, params paginate.Params, viewer string) (models.Page[T], error) {
	collection, ok := pipeline.CollectionFor(kind)
	if !ok {
		return models.Page[T]{}, apperr.Newf(apperr.KindValidationFailed, "unsupported target kind %q", kind)
	}
	page, err := pages.Run(ctx, collection, m.Augment(p, kind, viewer), params)
	if err != nil {
		return models.Page[T]{}, err
	}
	for _, doc := range page.Docs {
		Anonymize(doc, viewer)
	}
	out, err := DecodePage[T](page)
	if err != nil {
		return models.Page[T]{}, apperr.Wrap(apperr.KindStoreFailure, "failed to decode "+collection, err)
	}
	return out, nil
}

// One materializes a single document of kind, failing with NotFound when it is absent.
func One[T any](ctx context.Context, m *Materializer, kind models.TargetKind, id, viewer string) (T, error) {
	var zero T
	docs, err := m.Materialize(ctx, kind, []string{id}, viewer)
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, apperr.Newf(apperr.KindNotFound, "%s %s not found", kind, id)
	}
	out, err := Decode[T](docs[0])
	if err != nil {
		return zero, apperr.Wrap(apperr.KindStoreFailure, "failed to decode "+string(kind), err)
	}
	return out, nil
}
