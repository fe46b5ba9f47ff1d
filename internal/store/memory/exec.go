package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

// run evaluates p over the collection. Callers hold at least the read lock.
func (s *Store) run(collection string, p pipeline.Pipeline) ([]store.Document, error) {
	docs := make([]store.Document, 0, len(s.order[collection]))
	for _, id := range s.order[collection] {
		docs = append(docs, s.docs[collection][id].Clone())
	}

	for _, stage := range p {
		var err error
		docs, err = s.apply(docs, stage)
		if err != nil {
			return nil, fmt.Errorf("%s stage on %s: %w", stage.Op(), collection, err)
		}
	}
	return docs, nil
}

func (s *Store) apply(docs []store.Document, stage pipeline.Stage) ([]store.Document, error) {
	switch st := stage.(type) {
	case pipeline.Search:
		terms := strings.Fields(strings.ToLower(st.Text))
		return filter(docs, func(doc store.Document) bool {
			var haystack strings.Builder
			for _, field := range st.Fields {
				haystack.WriteString(strings.ToLower(doc.String(field)))
				haystack.WriteByte(' ')
			}
			text := haystack.String()
			for _, term := range terms {
				if !strings.Contains(text, term) {
					return false
				}
			}
			return true
		}), nil

	case pipeline.Match:
		return filter(docs, func(doc store.Document) bool {
			return equal(store.GetPath(doc, st.Field), st.Value)
		}), nil

	case pipeline.MatchAny:
		wanted := make(map[string]struct{}, len(st.Values))
		for _, v := range st.Values {
			wanted[v] = struct{}{}
		}
		return filter(docs, func(doc store.Document) bool {
			_, ok := wanted[doc.String(st.Field)]
			return ok
		}), nil

	case pipeline.MatchRelated:
		if err := s.requireCollection(st.Collection); err != nil {
			return nil, err
		}
		return filter(docs, func(doc store.Document) bool {
			return s.countRelated(st.Collection, st.ForeignField, store.GetPath(doc, st.LocalField), st.Where, 1) > 0
		}), nil

	case pipeline.Lookup:
		if err := s.requireCollection(st.From); err != nil {
			return nil, err
		}
		for _, doc := range docs {
			var joined any
			if foreign := s.findRelated(st.From, st.ForeignField, store.GetPath(doc, st.LocalField)); foreign != nil {
				joined = map[string]any(store.Project(foreign, st.Fields))
			}
			store.SetPath(doc, st.As, joined)
		}
		return docs, nil

	case pipeline.Count:
		if err := s.requireCollection(st.From); err != nil {
			return nil, err
		}
		for _, doc := range docs {
			n := s.countRelated(st.From, st.ForeignField, store.GetPath(doc, st.LocalField), st.Where, -1)
			store.SetPath(doc, st.As, int64(n))
		}
		return docs, nil

	case pipeline.Exists:
		if err := s.requireCollection(st.From); err != nil {
			return nil, err
		}
		for _, doc := range docs {
			n := s.countRelated(st.From, st.ForeignField, store.GetPath(doc, st.LocalField), st.Where, 1)
			store.SetPath(doc, st.As, n > 0)
		}
		return docs, nil

	case pipeline.Group:
		if len(docs) == 0 {
			return docs, nil
		}
		bucket := store.Document{}
		if st.CountAs != "" {
			bucket[st.CountAs] = int64(len(docs))
		}
		for _, acc := range st.Push {
			values := make([]any, 0, len(docs))
			for _, doc := range docs {
				values = append(values, store.GetPath(doc, acc.Field))
			}
			bucket[acc.As] = values
		}
		return []store.Document{bucket}, nil

	case pipeline.Sort:
		keys := st.StableKeys()
		sort.SliceStable(docs, func(i, j int) bool {
			for _, key := range keys {
				c := compare(store.GetPath(docs[i], key.Field), store.GetPath(docs[j], key.Field))
				if c == 0 {
					continue
				}
				if key.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		return docs, nil

	case pipeline.Project:
		for i, doc := range docs {
			docs[i] = store.Project(doc, st.Fields)
		}
		return docs, nil
	}

	return nil, fmt.Errorf("unsupported stage %T", stage)
}

func (s *Store) requireCollection(name string) error {
	_, err := store.Lookup(name)
	return err
}

func (s *Store) findRelated(collection, field string, value any) store.Document {
	if value == nil {
		return nil
	}
	if field == pipeline.FieldID {
		id, _ := value.(string)
		return s.docs[collection][id]
	}
	for _, id := range s.order[collection] {
		doc := s.docs[collection][id]
		if equal(store.GetPath(doc, field), value) {
			return doc
		}
	}
	return nil
}

// countRelated counts rows of collection whose field equals value and that satisfy where,
// stopping at limit when limit is positive.
func (s *Store) countRelated(collection, field string, value any, where []pipeline.Match, limit int) int {
	if value == nil {
		return 0
	}
	n := 0
	for _, id := range s.order[collection] {
		doc := s.docs[collection][id]
		if !equal(store.GetPath(doc, field), value) {
			continue
		}
		if !matchesAll(doc, where) {
			continue
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return n
}

func matchesAll(doc store.Document, where []pipeline.Match) bool {
	for _, m := range where {
		if !equal(store.GetPath(doc, m.Field), m.Value) {
			return false
		}
	}
	return true
}

func filter(docs []store.Document, keep func(store.Document) bool) []store.Document {
	out := docs[:0]
	for _, doc := range docs {
		if keep(doc) {
			out = append(out, doc)
		}
	}
	return out
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return rank(a) == rank(b) && compare(a, b) == 0
}

// compare orders values of mixed types: nil, bools, numbers, strings, times, then anything else.
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return 0
	case 1:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	case 4:
		return a.(time.Time).Compare(b.(time.Time))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int32, int64, float32, float64:
		return 2
	case string:
		return 3
	case time.Time:
		return 4
	default:
		return 5
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
