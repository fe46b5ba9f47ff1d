package toggle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/store/memory"
)

type world struct {
	store   *memory.Store
	alice   string
	bob     string
	video   string
	draft   string
	comment string
	tweet   string
}

func newWorld(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	create := func(collection string, doc store.Document) string {
		created, err := s.Create(ctx, collection, doc)
		if err != nil {
			t.Fatalf("create %s: %v", collection, err)
		}
		return created.ID()
	}

	w := world{store: s}
	w.alice = create(pipeline.Users, store.Document{"username": "alice", "email": "alice@example.com"})
	w.bob = create(pipeline.Users, store.Document{"username": "bob", "email": "bob@example.com"})
	w.video = create(pipeline.Videos, store.Document{"title": "v", "owner": w.alice, "isPublished": true})
	w.draft = create(pipeline.Videos, store.Document{"title": "d", "owner": w.alice, "isPublished": false})
	w.comment = create(pipeline.Comments, store.Document{"content": "c", "video": w.video, "owner": w.bob})
	w.tweet = create(pipeline.Tweets, store.Document{"content": "t", "owner": w.alice})
	return w
}

func countRows(t *testing.T, s store.Store, collection string, p pipeline.Pipeline) int {
	t.Helper()
	docs, err := s.Aggregate(context.Background(), collection, p)
	if err != nil {
		t.Fatalf("aggregate %s: %v", collection, err)
	}
	return len(docs)
}

func TestToggleLikeParity(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)

	targets := map[models.TargetKind]string{
		models.TargetVideo:   w.video,
		models.TargetComment: w.comment,
		models.TargetTweet:   w.tweet,
	}
	for kind, id := range targets {
		t.Run(string(kind), func(t *testing.T) {
			for n := 1; n <= 5; n++ {
				state, err := engine.ToggleLike(context.Background(), kind, id, w.bob)
				if err != nil {
					t.Fatalf("toggle %d: %v", n, err)
				}
				wantActive := n%2 == 1
				if state.Active() != wantActive {
					t.Fatalf("after %d toggles expected active=%v, got %s", n, wantActive, state)
				}
				rows := countRows(t, w.store, pipeline.Likes, pipeline.Pipeline{
					pipeline.Match{Field: "likedBy", Value: w.bob},
					pipeline.Match{Field: string(kind), Value: id},
				})
				if wantActive && rows != 1 || !wantActive && rows != 0 {
					t.Fatalf("after %d toggles expected %v row presence, found %d rows", n, wantActive, rows)
				}
			}
		})
	}
}

func TestToggleSubscriptionParity(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)

	for n := 1; n <= 4; n++ {
		state, err := engine.ToggleSubscription(context.Background(), w.alice, w.bob)
		if err != nil {
			t.Fatalf("toggle %d: %v", n, err)
		}
		if state.Active() != (n%2 == 1) {
			t.Fatalf("after %d toggles got %s", n, state)
		}
	}
	if rows := countRows(t, w.store, pipeline.Subscriptions, nil); rows != 0 {
		t.Fatalf("expected no subscriptions after an even number of toggles, got %d", rows)
	}
}

func TestToggleMissingTargetNeverCreates(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)
	missing := uuid.NewString()

	for _, kind := range []models.TargetKind{models.TargetVideo, models.TargetComment, models.TargetTweet} {
		if _, err := engine.ToggleLike(context.Background(), kind, missing, w.bob); !apperr.Is(err, apperr.KindTargetNotFound) {
			t.Fatalf("%s: expected TargetNotFound, got %v", kind, err)
		}
	}
	if _, err := engine.ToggleSubscription(context.Background(), missing, w.bob); !apperr.Is(err, apperr.KindTargetNotFound) {
		t.Fatalf("subscription: expected TargetNotFound, got %v", err)
	}

	if rows := countRows(t, w.store, pipeline.Likes, nil); rows != 0 {
		t.Fatalf("expected no likes, got %d", rows)
	}
	if rows := countRows(t, w.store, pipeline.Subscriptions, nil); rows != 0 {
		t.Fatalf("expected no subscriptions, got %d", rows)
	}
}

func TestToggleValidation(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)
	ctx := context.Background()

	if _, err := engine.ToggleLike(ctx, models.TargetVideo, "bad", w.bob); !apperr.Is(err, apperr.KindInvalidIdentifier) {
		t.Fatalf("expected InvalidIdentifier for target, got %v", err)
	}
	if _, err := engine.ToggleLike(ctx, models.TargetVideo, w.video, ""); !apperr.Is(err, apperr.KindInvalidIdentifier) {
		t.Fatalf("expected InvalidIdentifier for actor, got %v", err)
	}
	if _, err := engine.ToggleLike(ctx, models.TargetKind("playlist"), w.video, w.bob); !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("expected ValidationFailed for kind, got %v", err)
	}
	if _, err := engine.ToggleSubscription(ctx, w.bob, w.bob); !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("expected self-subscription to be rejected, got %v", err)
	}
	if _, err := engine.ToggleSubscription(ctx, "nope", w.bob); !apperr.Is(err, apperr.KindInvalidIdentifier) {
		t.Fatalf("expected InvalidIdentifier for channel, got %v", err)
	}
}

func TestToggleLikeVisibility(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)
	ctx := context.Background()

	if _, err := engine.ToggleLike(ctx, models.TargetVideo, w.draft, w.bob); !apperr.Is(err, apperr.KindTargetNotFound) {
		t.Fatalf("expected unpublished video to be hidden from others, got %v", err)
	}
	state, err := engine.ToggleLike(ctx, models.TargetVideo, w.draft, w.alice)
	if err != nil || state != models.StateActive {
		t.Fatalf("expected owner to like their own draft, got %s / %v", state, err)
	}
}

func TestToggleLikeCommentOnDraft(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)
	ctx := context.Background()

	hidden, err := w.store.Create(ctx, pipeline.Comments, store.Document{"content": "note", "video": w.draft, "owner": w.alice})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := engine.ToggleLike(ctx, models.TargetComment, hidden.ID(), w.bob); !apperr.Is(err, apperr.KindTargetNotFound) {
		t.Fatalf("expected comment on a draft to be hidden from others, got %v", err)
	}
	if n := countRows(t, w.store, pipeline.Likes, nil); n != 0 {
		t.Fatalf("expected no like rows, got %d", n)
	}
	state, err := engine.ToggleLike(ctx, models.TargetComment, hidden.ID(), w.alice)
	if err != nil || state != models.StateActive {
		t.Fatalf("expected video owner to like the comment, got %s / %v", state, err)
	}
	if state, err := engine.ToggleLike(ctx, models.TargetComment, w.comment, w.alice); err != nil || state != models.StateActive {
		t.Fatalf("expected comment on a published video to be likeable, got %s / %v", state, err)
	}
}

func TestToggleLikeScenario(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)
	ctx := context.Background()

	likesCount := func() int {
		return countRows(t, w.store, pipeline.Likes, pipeline.Pipeline{pipeline.Match{Field: "video", Value: w.video}})
	}

	state, err := engine.ToggleLike(ctx, models.TargetVideo, w.video, w.bob)
	if err != nil || state != models.StateActive || likesCount() != 1 {
		t.Fatalf("expected active with one like, got %s / %v / %d", state, err, likesCount())
	}
	state, err = engine.ToggleLike(ctx, models.TargetVideo, w.video, w.bob)
	if err != nil || state != models.StateInactive || likesCount() != 0 {
		t.Fatalf("expected inactive with no likes, got %s / %v / %d", state, err, likesCount())
	}
}

// racingStore simulates another request winning the race between lookup and write.
type racingStore struct {
	store.Store
	findErr   error
	found     store.Document
	createErr error
	deleteErr error
	creates   int
	deletes   int
}

func (r *racingStore) FindByID(context.Context, string, string) (store.Document, error) {
	return store.Document{"isPublished": true}, nil
}

func (r *racingStore) FindOne(context.Context, string, store.Filter) (store.Document, error) {
	return r.found, r.findErr
}

func (r *racingStore) Create(context.Context, string, store.Document) (store.Document, error) {
	r.creates++
	return nil, r.createErr
}

func (r *racingStore) DeleteByID(context.Context, string, string) error {
	r.deletes++
	return r.deleteErr
}

func TestToggleRacesAreNoOps(t *testing.T) {
	target, actor := uuid.NewString(), uuid.NewString()

	conflict := &racingStore{findErr: store.ErrNotFound, createErr: fmt.Errorf("insert: %w", store.ErrConflict)}
	state, err := NewEngine(conflict).ToggleLike(context.Background(), models.TargetVideo, target, actor)
	if err != nil || state != models.StateActive || conflict.creates != 1 {
		t.Fatalf("expected conflicting create to report active, got %s / %v", state, err)
	}

	gone := &racingStore{found: store.Document{"id": uuid.NewString()}, deleteErr: store.ErrNotFound}
	state, err = NewEngine(gone).ToggleLike(context.Background(), models.TargetVideo, target, actor)
	if err != nil || state != models.StateInactive || gone.deletes != 1 {
		t.Fatalf("expected missing delete to report inactive, got %s / %v", state, err)
	}
}

func TestToggleStoreFailures(t *testing.T) {
	target, actor := uuid.NewString(), uuid.NewString()

	tests := []struct {
		name  string
		store *racingStore
		kind  apperr.Kind
	}{
		{name: "lookup fails", store: &racingStore{findErr: errors.New("boom")}, kind: apperr.KindStoreFailure},
		{name: "create fails", store: &racingStore{findErr: store.ErrNotFound, createErr: errors.New("boom")}, kind: apperr.KindStoreFailure},
		{name: "target vanished", store: &racingStore{findErr: store.ErrNotFound, createErr: store.ErrNotFound}, kind: apperr.KindTargetNotFound},
		{name: "delete fails", store: &racingStore{found: store.Document{"id": "x"}, deleteErr: errors.New("boom")}, kind: apperr.KindStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.store).ToggleLike(context.Background(), models.TargetTweet, target, actor)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestConcurrentTogglesLeaveAtMostOneRow(t *testing.T) {
	w := newWorld(t)
	engine := NewEngine(w.store)

	const workers = 25
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		active int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := engine.ToggleLike(context.Background(), models.TargetVideo, w.video, w.bob)
			if err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
			if state.Active() {
				mu.Lock()
				active++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	rows := countRows(t, w.store, pipeline.Likes, pipeline.Pipeline{pipeline.Match{Field: "video", Value: w.video}})
	if rows > 1 {
		t.Fatalf("expected at most one like row, got %d", rows)
	}
	if active == 0 {
		t.Fatal("expected at least one toggle to observe the active state")
	}
}
