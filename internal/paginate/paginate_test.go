package paginate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/store/memory"
)

func TestParseParams(t *testing.T) {
	defaults := Defaults{Limit: 10, MaxLimit: 100}

	tests := []struct {
		name  string
		page  string
		limit string
		want  Params
	}{
		{name: "empty", want: Params{Page: 1, Limit: 10}},
		{name: "valid", page: "3", limit: "25", want: Params{Page: 3, Limit: 25}},
		{name: "page below one", page: "0", limit: "5", want: Params{Page: 1, Limit: 5}},
		{name: "negative page", page: "-4", want: Params{Page: 1, Limit: 10}},
		{name: "non numeric", page: "two", limit: "many", want: Params{Page: 1, Limit: 10}},
		{name: "zero limit", page: "2", limit: "0", want: Params{Page: 2, Limit: 10}},
		{name: "limit above max", limit: "5000", want: Params{Page: 1, Limit: 100}},
		{name: "whitespace", page: " 2 ", limit: " 3 ", want: Params{Page: 2, Limit: 3}},
		{name: "page offset overflows", page: "922337203685477582", limit: "10", want: Params{Page: math.MaxInt/10 + 1, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseParams(tt.page, tt.limit, defaults); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}

	if got := ParseParams("", "", Defaults{}); got != (Params{Page: 1, Limit: DefaultLimit}) {
		t.Fatalf("expected package defaults, got %+v", got)
	}

	if off := ParseParams("922337203685477582", "10", defaults).Offset(); off < 0 {
		t.Fatalf("expected a non-negative offset, got %d", off)
	}
}

func TestOffsetSaturates(t *testing.T) {
	if got := (Params{Page: math.MaxInt, Limit: 100}).Offset(); got != math.MaxInt {
		t.Fatalf("expected saturated offset, got %d", got)
	}
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
}

func TestRunFarPastTheEndIsEmpty(t *testing.T) {
	s := memory.New()
	seedVideos(t, s, 3)
	engine := NewEngine(s)

	p, err := pipeline.ListVideos(pipeline.VideoQuery{PublishedOnly: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	params := ParseParams("922337203685477582", "10", Defaults{Limit: 10, MaxLimit: 100})
	page, err := engine.Run(context.Background(), pipeline.Videos, p, params)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(page.Docs) != 0 || page.Total != 3 || page.TotalPages != 1 || page.HasNext {
		t.Fatalf("expected an empty window past the end, got %d docs %+v", len(page.Docs), page)
	}
}

func TestNewPageMetadata(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		params Params
		want   Page
	}{
		{
			name:   "empty",
			total:  0,
			params: Params{Page: 1, Limit: 10},
			want:   Page{Docs: []store.Document{}, Page: 1, Limit: 10},
		},
		{
			name:   "first of three",
			total:  5,
			params: Params{Page: 1, Limit: 2},
			want:   Page{Docs: []store.Document{}, Total: 5, Page: 1, Limit: 2, TotalPages: 3, HasNext: true},
		},
		{
			name:   "last page",
			total:  5,
			params: Params{Page: 3, Limit: 2},
			want:   Page{Docs: []store.Document{}, Total: 5, Page: 3, Limit: 2, TotalPages: 3, HasPrev: true},
		},
		{
			name:   "past the end",
			total:  5,
			params: Params{Page: 9, Limit: 2},
			want:   Page{Docs: []store.Document{}, Total: 5, Page: 9, Limit: 2, TotalPages: 3, HasPrev: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPage(nil, tt.total, tt.params)
			if got.Total != tt.want.Total || got.TotalPages != tt.want.TotalPages || got.HasPrev != tt.want.HasPrev ||
				got.HasNext != tt.want.HasNext || got.Page != tt.want.Page || got.Limit != tt.want.Limit || got.Docs == nil {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func seedVideos(t *testing.T, s *memory.Store, n int) []string {
	t.Helper()
	ctx := context.Background()
	owner, err := s.Create(ctx, pipeline.Users, store.Document{"username": "alice", "email": "alice@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		doc, err := s.Create(ctx, pipeline.Videos, store.Document{
			"title":       fmt.Sprintf("video %d", i),
			"owner":       owner.ID(),
			"isPublished": true,
			"createdAt":   base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create video: %v", err)
		}
		ids = append(ids, doc.ID())
	}
	return ids
}

func TestRunFirstPageOfFivePublishedVideos(t *testing.T) {
	s := memory.New()
	ids := seedVideos(t, s, 5)
	engine := NewEngine(s)

	p, err := pipeline.ListVideos(pipeline.VideoQuery{PublishedOnly: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	page, err := engine.Run(context.Background(), pipeline.Videos, p, Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(page.Docs) != 2 || page.Docs[0].ID() != ids[4] || page.Docs[1].ID() != ids[3] {
		t.Fatalf("expected the two most recent videos, got %v", page.Docs)
	}
	if page.Total != 5 || page.TotalPages != 3 || !page.HasNext || page.HasPrev {
		t.Fatalf("unexpected metadata %+v", page)
	}
}

func TestRunPagesConcatenateToTotal(t *testing.T) {
	s := memory.New()
	seedVideos(t, s, 11)
	engine := NewEngine(s)
	p, _ := pipeline.ListVideos(pipeline.VideoQuery{PublishedOnly: true, SortBy: "views"})

	for _, limit := range []int{1, 3, 4, 11, 20} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			first, err := engine.Run(context.Background(), pipeline.Videos, p, Params{Page: 1, Limit: limit})
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			seen := map[string]bool{}
			count := 0
			for page := 1; page <= first.TotalPages; page++ {
				result, err := engine.Run(context.Background(), pipeline.Videos, p, Params{Page: page, Limit: limit})
				if err != nil {
					t.Fatalf("run page %d: %v", page, err)
				}
				for _, doc := range result.Docs {
					if seen[doc.ID()] {
						t.Fatalf("duplicate %s on page %d", doc.ID(), page)
					}
					seen[doc.ID()] = true
					count++
				}
			}
			if int64(count) != first.Total {
				t.Fatalf("expected %d documents across pages, got %d", first.Total, count)
			}
		})
	}
}

func TestRunIsRepeatable(t *testing.T) {
	s := memory.New()
	seedVideos(t, s, 6)
	engine := NewEngine(s)
	p, _ := pipeline.ListVideos(pipeline.VideoQuery{SortBy: "duration"})

	first, err := engine.Run(context.Background(), pipeline.Videos, p, Params{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := engine.Run(context.Background(), pipeline.Videos, p, Params{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i := range first.Docs {
		if first.Docs[i].ID() != second.Docs[i].ID() {
			t.Fatalf("expected identical pages, got %v and %v", first.Docs, second.Docs)
		}
	}
}

type failingStore struct {
	store.Store
}

func (failingStore) AggregatePage(context.Context, string, pipeline.Pipeline, store.Window) ([]store.Document, int64, error) {
	return nil, 0, errors.New("connection reset")
}

func TestRunWrapsStoreFailures(t *testing.T) {
	engine := NewEngine(failingStore{})
	_, err := engine.Run(context.Background(), pipeline.Videos, nil, Params{Page: 1, Limit: 10})
	if !apperr.Is(err, apperr.KindStoreFailure) {
		t.Fatalf("expected store failure, got %v", err)
	}
}
