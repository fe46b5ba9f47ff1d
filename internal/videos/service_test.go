package videos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/paginate"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/store/memory"
)

type stubMedia struct {
	mu        sync.Mutex
	stored    []string
	deleted   []string
	storeErr  error
	deleteErr error
}

func (m *stubMedia) Store(_ context.Context, localPath string) (models.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return models.MediaAsset{}, m.storeErr
	}
	m.stored = append(m.stored, localPath)
	return models.MediaAsset{URL: "https://cdn/" + localPath, StorageID: "id-" + localPath}, nil
}

func (m *stubMedia) Delete(_ context.Context, storageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, storageID)
	return nil
}

type stubProber struct {
	seconds float64
	err     error
}

func (p stubProber) Probe(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

type harness struct {
	store   *memory.Store
	media   *stubMedia
	service *Service
	alice   string
	bob     string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	s := memory.New()
	media := &stubMedia{}
	h := harness{
		store: s,
		media: media,
		service: NewService(Dependencies{
			Store:    s,
			Media:    media,
			Prober:   stubProber{seconds: 42.5},
			Defaults: paginate.Defaults{Limit: paginate.DefaultLimit, MaxLimit: paginate.MaxLimit},
		}),
	}
	h.alice = h.user(t, "alice")
	h.bob = h.user(t, "bob")
	return h
}

func (h harness) user(t *testing.T, name string) string {
	t.Helper()
	doc, err := h.store.Create(context.Background(), pipeline.Users, store.Document{"username": name, "fullName": name, "email": name + "@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return doc.ID()
}

func (h harness) video(t *testing.T, owner, title string, published bool, createdAt time.Time) string {
	t.Helper()
	doc, err := h.store.Create(context.Background(), pipeline.Videos, store.Document{
		"title":       title,
		"description": title + " description",
		"owner":       owner,
		"isPublished": published,
		"thumbnail":   map[string]any{"url": "t", "storageId": "thumb-" + title},
		"videoFile":   map[string]any{"url": "v", "storageId": "file-" + title},
		"createdAt":   createdAt,
	})
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	return doc.ID()
}

func TestListPaginatesNewestFirst(t *testing.T) {
	h := newHarness(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		h.video(t, h.alice, fmt.Sprintf("v%d", i), true, base.Add(time.Duration(i)*time.Hour))
	}
	h.video(t, h.alice, "draft", false, base.Add(10*time.Hour))

	page, err := h.service.List(context.Background(), ListInput{Page: "1", Limit: "2"}, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || !page.HasNext || page.HasPrev {
		t.Fatalf("unexpected page metadata %+v", page)
	}
	if len(page.Docs) != 2 || page.Docs[0].Title != "v4" || page.Docs[1].Title != "v3" {
		t.Fatalf("expected the two most recent videos, got %+v", page.Docs)
	}
}

func TestListPagesCoverEveryVideoOnce(t *testing.T) {
	h := newHarness(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		// equal timestamps exercise the id tie-break
		h.video(t, h.bob, fmt.Sprintf("v%d", i), true, base.Add(time.Duration(i/2)*time.Hour))
	}

	seen := map[string]bool{}
	for pageNo := 1; pageNo <= 3; pageNo++ {
		page, err := h.service.List(context.Background(), ListInput{Page: fmt.Sprint(pageNo), Limit: "3", SortType: "asc"}, "")
		if err != nil {
			t.Fatalf("list page %d: %v", pageNo, err)
		}
		for _, v := range page.Docs {
			if seen[v.ID] {
				t.Fatalf("video %s listed twice", v.ID)
			}
			seen[v.ID] = true
		}
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 distinct videos, got %d", len(seen))
	}
}

func TestListOwnChannelIncludesDrafts(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	h.video(t, h.alice, "public", true, now)
	h.video(t, h.alice, "draft", false, now.Add(time.Minute))

	own, err := h.service.List(context.Background(), ListInput{UserID: h.alice}, h.alice)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	other, err := h.service.List(context.Background(), ListInput{UserID: h.alice}, h.bob)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if own.Total != 2 || other.Total != 1 {
		t.Fatalf("expected 2 own and 1 visible video, got %d and %d", own.Total, other.Total)
	}

	if _, err := h.service.List(context.Background(), ListInput{UserID: "nope"}, ""); !apperr.Is(err, apperr.KindInvalidIdentifier) {
		t.Fatalf("expected InvalidIdentifier, got %v", err)
	}
}

func TestGetHidesDraftsFromOthers(t *testing.T) {
	h := newHarness(t)
	draft := h.video(t, h.alice, "draft", false, time.Now())

	if _, err := h.service.Get(context.Background(), draft, h.bob); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for other viewer, got %v", err)
	}
	view, err := h.service.Get(context.Background(), draft, h.alice)
	if err != nil {
		t.Fatalf("get own draft: %v", err)
	}
	if view.Owner.Username != "alice" || view.IsLiked || view.LikesCount != 0 {
		t.Fatalf("unexpected view %+v", view)
	}
	if _, err := h.service.Get(context.Background(), "42", ""); !apperr.Is(err, apperr.KindInvalidIdentifier) {
		t.Fatalf("expected InvalidIdentifier, got %v", err)
	}
}

func TestPublish(t *testing.T) {
	h := newHarness(t)

	video, err := h.service.Publish(context.Background(), h.alice, PublishInput{
		Title:         " Launch ",
		Description:   "first upload",
		VideoPath:     "clip.mp4",
		ThumbnailPath: "poster.png",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if video.Title != "Launch" || !video.IsPublished || video.Owner != h.alice || video.Duration != 42.5 {
		t.Fatalf("unexpected video %+v", video)
	}
	if video.VideoFile.StorageID != "id-clip.mp4" || video.Thumbnail.StorageID != "id-poster.png" {
		t.Fatalf("unexpected assets %+v / %+v", video.VideoFile, video.Thumbnail)
	}
	if len(h.media.stored) != 2 {
		t.Fatalf("expected two uploads, got %v", h.media.stored)
	}
}

func TestPublishFailures(t *testing.T) {
	h := newHarness(t)
	valid := PublishInput{Title: "t", Description: "d", VideoPath: "v.mp4", ThumbnailPath: "t.png"}

	if _, err := h.service.Publish(context.Background(), "", valid); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}

	missing := valid
	missing.ThumbnailPath = ""
	if _, err := h.service.Publish(context.Background(), h.alice, missing); !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("expected ValidationFailed, got %v", err)
	}

	h.media.storeErr = errors.New("host down")
	if _, err := h.service.Publish(context.Background(), h.alice, valid); !apperr.Is(err, apperr.KindStoreFailure) {
		t.Fatalf("expected StoreFailure, got %v", err)
	}
	docs, _ := h.store.Aggregate(context.Background(), pipeline.Videos, nil)
	if len(docs) != 0 {
		t.Fatalf("expected no video after failed upload, got %d", len(docs))
	}
}

func TestUpdateByNonOwnerIsUnauthorized(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, h.bob, "original", true, time.Now())

	_, err := h.service.Update(context.Background(), h.alice, id, UpdateInput{Title: "hijacked", Description: "x"})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	doc, err := h.store.FindByID(context.Background(), pipeline.Videos, id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if doc.String("title") != "original" {
		t.Fatalf("expected video to be unchanged, got title %q", doc.String("title"))
	}
}

func TestUpdateReplacesThumbnail(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, h.alice, "old", true, time.Now())

	updated, err := h.service.Update(context.Background(), h.alice, id, UpdateInput{Title: "new", Description: "desc", ThumbnailPath: "new.png"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "new" || updated.Thumbnail.StorageID != "id-new.png" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if len(h.media.deleted) != 1 || h.media.deleted[0] != "thumb-old" {
		t.Fatalf("expected old thumbnail to be removed, got %v", h.media.deleted)
	}

	_, err = h.service.Update(context.Background(), h.alice, id, UpdateInput{Title: "again", Description: "desc"})
	if err != nil {
		t.Fatalf("update without thumbnail: %v", err)
	}
	if len(h.media.deleted) != 1 {
		t.Fatalf("expected no further deletes, got %v", h.media.deleted)
	}
}

func TestDeleteRemovesDocumentThenMedia(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, h.alice, "gone", true, time.Now())
	if _, err := h.store.Create(context.Background(), pipeline.Comments, store.Document{"content": "c", "video": id, "owner": h.bob}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := h.service.Delete(context.Background(), h.bob, id); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if err := h.service.Delete(context.Background(), h.alice, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.store.FindByID(context.Background(), pipeline.Videos, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected video to be gone, got %v", err)
	}
	comments, _ := h.store.Aggregate(context.Background(), pipeline.Comments, nil)
	if len(comments) != 0 {
		t.Fatalf("expected comments to cascade, got %d", len(comments))
	}
	if len(h.media.deleted) != 2 || h.media.deleted[0] != "file-gone" || h.media.deleted[1] != "thumb-gone" {
		t.Fatalf("unexpected media deletes %v", h.media.deleted)
	}
	if err := h.service.Delete(context.Background(), h.alice, uuid.NewString()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTogglePublishReturnsNewFlag(t *testing.T) {
	h := newHarness(t)
	id := h.video(t, h.alice, "v", true, time.Now())

	published, err := h.service.TogglePublish(context.Background(), h.alice, id)
	if err != nil || published {
		t.Fatalf("expected unpublished, got %v / %v", published, err)
	}
	published, err = h.service.TogglePublish(context.Background(), h.alice, id)
	if err != nil || !published {
		t.Fatalf("expected published, got %v / %v", published, err)
	}
	if _, err := h.service.TogglePublish(context.Background(), h.bob, id); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}
