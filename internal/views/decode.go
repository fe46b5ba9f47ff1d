package views

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/store"
)

// Decode converts a document into T using the `doc` struct tags.
func Decode[T any](doc store.Document) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "doc",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// DecodeAll converts every document, failing on the first error.
func DecodeAll[T any](docs []store.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := Decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodePage converts the documents of a page and keeps its metadata.
func DecodePage[T any](page paginate.Page) (models.Page[T], error) {
	docs, err := DecodeAll[T](page.Docs)
	if err != nil {
		return models.Page[T]{}, err
	}
	return models.Page[T]{
		Docs:       docs,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
	}, nil
}
