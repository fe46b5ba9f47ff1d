// Package memory implements the entity store in process memory. It enforces
// the same unique keys, references and cascades as the Postgres schema.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

// Store keeps documents per collection in insertion order.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]map[string]store.Document
	order map[string][]string
	now   func() time.Time
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		docs:  make(map[string]map[string]store.Document),
		order: make(map[string][]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source, which keeps ordering deterministic in tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// FindByID returns a copy of the document with the given id.
func (s *Store) FindByID(ctx context.Context, collection, id string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := store.Lookup(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc.Clone(), nil
}

// FindOne returns the first document, in insertion order, matching every filter entry.
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, err := store.Lookup(collection)
	if err != nil {
		return nil, err
	}
	for _, field := range store.SortedKeys(filter) {
		if !schema.HasField(field) {
			return nil, fmt.Errorf("unknown field %q for %s", field, collection)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order[collection] {
		doc := s.docs[collection][id]
		if matchesFilter(doc, filter) {
			return doc.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

// Create inserts doc, assigning an id and timestamps when missing.
func (s *Store) Create(ctx context.Context, collection string, doc store.Document) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, err := store.Lookup(collection)
	if err != nil {
		return nil, err
	}
	if err := checkFields(schema, doc); err != nil {
		return nil, err
	}

	created := doc.Clone()
	if created == nil {
		created = store.Document{}
	}
	if created.ID() == "" {
		created["id"] = models.NewID()
	}
	now := s.now()
	if _, ok := created["createdAt"].(time.Time); !ok {
		created["createdAt"] = now
	}
	if schema.Timestamps {
		if _, ok := created["updatedAt"].(time.Time); !ok {
			created["updatedAt"] = now
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[collection][created.ID()]; exists {
		return nil, store.ErrConflict
	}
	if err := s.checkReferences(schema, created); err != nil {
		return nil, err
	}
	if err := s.checkUnique(schema, created, ""); err != nil {
		return nil, err
	}

	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]store.Document)
	}
	s.docs[collection][created.ID()] = created
	s.order[collection] = append(s.order[collection], created.ID())
	return created.Clone(), nil
}

// UpdateByID applies patch, whose keys may be dotted paths, and returns the updated document.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, patch store.Document) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, err := store.Lookup(collection)
	if err != nil {
		return nil, err
	}
	changes := store.Flatten(patch)
	delete(changes, "id")
	for _, field := range store.SortedKeys(changes) {
		if !schema.HasField(field) {
			return nil, fmt.Errorf("unknown field %q for %s", field, collection)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.docs[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}

	updated := current.Clone()
	for _, field := range store.SortedKeys(changes) {
		store.SetPath(updated, field, changes[field])
	}
	if schema.Timestamps {
		updated["updatedAt"] = s.now()
	}
	if err := s.checkReferences(schema, updated); err != nil {
		return nil, err
	}
	if err := s.checkUnique(schema, updated, id); err != nil {
		return nil, err
	}

	s.docs[collection][id] = updated
	return updated.Clone(), nil
}

// DeleteByID removes the document and, transitively, every document referencing it.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := store.Lookup(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[collection][id]; !ok {
		return store.ErrNotFound
	}
	s.cascadeDelete(collection, id)
	return nil
}

// Aggregate runs the pipeline over a snapshot of the collection.
func (s *Store) Aggregate(ctx context.Context, collection string, p pipeline.Pipeline) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := store.Lookup(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.run(collection, p)
}

// AggregatePage runs the pipeline and returns the requested window plus the total match count.
func (s *Store) AggregatePage(ctx context.Context, collection string, p pipeline.Pipeline, w store.Window) ([]store.Document, int64, error) {
	docs, err := s.Aggregate(ctx, collection, p)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(docs))
	start := min(max(w.Offset, 0), len(docs))
	end := len(docs)
	if w.Limit > 0 {
		end = min(start+w.Limit, len(docs))
	}
	return docs[start:end], total, nil
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) cascadeDelete(collection, id string) {
	delete(s.docs[collection], id)
	s.order[collection] = removeID(s.order[collection], id)

	for _, name := range store.SortedKeys(store.Schema) {
		schema := store.Schema[name]
		for _, ref := range schema.References {
			if ref.Collection != collection {
				continue
			}
			for _, childID := range append([]string(nil), s.order[name]...) {
				child, ok := s.docs[name][childID]
				if ok && child.String(ref.Field) == id {
					s.cascadeDelete(name, childID)
				}
			}
		}
	}
}

func (s *Store) checkReferences(schema store.Collection, doc store.Document) error {
	for _, ref := range schema.References {
		target := doc.String(ref.Field)
		if target == "" {
			continue
		}
		if _, ok := s.docs[ref.Collection][target]; !ok {
			return fmt.Errorf("%s.%s references missing %s %q: %w", schema.Name, ref.Field, ref.Collection, target, store.ErrNotFound)
		}
	}
	return nil
}

func (s *Store) checkUnique(schema store.Collection, doc store.Document, selfID string) error {
	for _, key := range schema.Unique {
		if !keySet(doc, key) {
			continue
		}
		for id, other := range s.docs[schema.Name] {
			if id == selfID || !keySet(other, key) {
				continue
			}
			if sameKey(doc, other, key) {
				return fmt.Errorf("%s unique %v: %w", schema.Name, key, store.ErrConflict)
			}
		}
	}
	return nil
}

func checkFields(schema store.Collection, doc store.Document) error {
	for _, field := range store.SortedKeys(store.Flatten(doc)) {
		if !schema.HasField(field) {
			return fmt.Errorf("unknown field %q for %s", field, schema.Name)
		}
	}
	return nil
}

func keySet(doc store.Document, key []string) bool {
	for _, field := range key {
		v := store.GetPath(doc, field)
		if v == nil || v == "" {
			return false
		}
	}
	return true
}

func sameKey(a, b store.Document, key []string) bool {
	for _, field := range key {
		if !equal(store.GetPath(a, field), store.GetPath(b, field)) {
			return false
		}
	}
	return true
}

func matchesFilter(doc store.Document, filter store.Filter) bool {
	for field, want := range filter {
		if !equal(store.GetPath(doc, field), want) {
			return false
		}
	}
	return true
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
