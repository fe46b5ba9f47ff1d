package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

func TestCompileVideoListing(t *testing.T) {
	owner := "6f1d7a52-4a8e-4d8e-9d6b-0c5d3b1f2a01"
	p, err := pipeline.ListVideos(pipeline.VideoQuery{Text: "cats", OwnerID: owner, PublishedOnly: true, SortBy: "views"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	q, err := compile(pipeline.Videos, p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	sql, args := q.pageSQL(store.Window{Offset: 20, Limit: 10})
	wantFragments := []string{
		`t.video_file_url AS "videoFile.url"`,
		"FROM videos t",
		"to_tsvector('english', t.title || ' ' || t.description) @@ plainto_tsquery('english', $1)",
		"t.owner_id = $2",
		"t.is_published = $3",
		"ORDER BY t.views DESC, t.id DESC",
		"LIMIT $4 OFFSET $5",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(sql, fragment) {
			t.Fatalf("expected %q in %s", fragment, sql)
		}
	}
	if want := []any{"cats", owner, true, 10, 20}; !reflect.DeepEqual(args, want) {
		t.Fatalf("expected args %v, got %v", want, args)
	}
	if len(q.args) != 3 {
		t.Fatalf("expected window args to stay out of the count query, got %v", q.args)
	}
}

func TestCompileDerivedFields(t *testing.T) {
	viewer := "6f1d7a52-4a8e-4d8e-9d6b-0c5d3b1f2a02"
	p := pipeline.Pipeline{
		pipeline.MatchAny{Field: "id", Values: []string{"a", "b"}},
		pipeline.Lookup{From: pipeline.Users, LocalField: "owner", ForeignField: "id", As: "owner", Fields: []string{"id", "username"}},
		pipeline.Count{From: pipeline.Likes, LocalField: "id", ForeignField: "video", As: "likesCount"},
		pipeline.Exists{From: pipeline.Likes, LocalField: "id", ForeignField: "video", As: "isLiked", Where: []pipeline.Match{{Field: "likedBy", Value: viewer}}},
	}

	q, err := compile(pipeline.Videos, p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	sql := q.selectSQL(true)

	for _, fragment := range []string{
		"t.id = ANY($1)",
		"LEFT JOIN users j1 ON j1.id = t.owner_id",
		`j1.username AS "owner.username"`,
		`(SELECT COUNT(*) FROM likes r2 WHERE r2.video_id = t.id) AS "likesCount"`,
		`EXISTS (SELECT 1 FROM likes r3 WHERE r3.video_id = t.id AND r3.liked_by = $2) AS "isLiked"`,
	} {
		if !strings.Contains(sql, fragment) {
			t.Fatalf("expected %q in %s", fragment, sql)
		}
	}
	if strings.Contains(sql, `t.owner_id AS "owner"`) {
		t.Fatalf("expected owner id column to be replaced by the lookup: %s", sql)
	}
	if !reflect.DeepEqual(q.lookups, []string{"owner"}) {
		t.Fatalf("unexpected lookups %v", q.lookups)
	}

	count := q.countSQL()
	if !strings.HasPrefix(count, "SELECT COUNT(*) FROM (SELECT ") || strings.Contains(count, "ORDER BY") {
		t.Fatalf("unexpected count query %s", count)
	}
}

func TestCompileSubscriberSummary(t *testing.T) {
	p, err := pipeline.SubscriberSummary("6f1d7a52-4a8e-4d8e-9d6b-0c5d3b1f2a01")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	q, err := compile(pipeline.Subscriptions, p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := `SELECT COUNT(*) AS "totalCount", array_agg(j1.username ORDER BY t.created_at, t.id) AS "usernames" FROM subscriptions t LEFT JOIN users j1 ON j1.id = t.subscriber_id WHERE t.channel_id = $1 HAVING COUNT(*) > 0`
	if got := q.selectSQL(true); got != want {
		t.Fatalf("unexpected sql\nwant %s\ngot  %s", want, got)
	}
}

func TestCompileRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		p    pipeline.Pipeline
	}{
		{name: "match", p: pipeline.Pipeline{pipeline.Match{Field: "password", Value: "x"}}},
		{name: "sort", p: pipeline.Pipeline{pipeline.Sort{Keys: []pipeline.SortKey{{Field: "rating"}}}}},
		{name: "lookup field", p: pipeline.Pipeline{pipeline.Lookup{From: pipeline.Users, LocalField: "owner", ForeignField: "id", As: "owner", Fields: []string{"password"}}}},
		{name: "related collection", p: pipeline.Pipeline{pipeline.Count{From: "sessions", LocalField: "id", ForeignField: "video", As: "n"}}},
		{name: "stage after group", p: pipeline.Pipeline{pipeline.Group{CountAs: "n"}, pipeline.Sort{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := compile(pipeline.Videos, tt.p); err == nil {
				t.Fatal("expected compile error")
			}
		})
	}
}
