// Package paginate executes pipelines with page/limit semantics.
package paginate

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Defaults bounds the limits accepted by ParseParams.
type Defaults struct {
	Limit    int
	MaxLimit int
}

// Params is a clamped 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of documents preceding the page, saturating at
// math.MaxInt.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Page is one window of results with its metadata.
type Page struct {
	Docs       []store.Document
	Total      int64
	Page       int
	Limit      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// ParseParams clamps raw query values instead of rejecting them: a page below 1
// or non-numeric becomes 1, a non-positive or non-numeric limit becomes the
// default and a limit above the maximum becomes the maximum. The page is capped
// so that its offset fits in an int.
func ParseParams(page, limit string, d Defaults) Params {
	d = d.normalized()

	p := Params{Page: 1, Limit: d.Limit}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n > 0 {
		p.Limit = min(n, d.MaxLimit)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n > 1 {
		p.Page = min(n, maxPage(p.Limit))
	}
	return p
}

func maxPage(limit int) int {
	return math.MaxInt/limit + 1
}

func (d Defaults) normalized() Defaults {
	if d.Limit <= 0 {
		d.Limit = DefaultLimit
	}
	if d.MaxLimit <= 0 {
		d.MaxLimit = MaxLimit
	}
	if d.Limit > d.MaxLimit {
		d.Limit = d.MaxLimit
	}
	return d
}

// Engine runs pipelines against a store one page at a time.
type Engine struct {
	store store.Store
}

// NewEngine constructs a pagination engine.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Run executes p over collection and returns the requested page.
func (e *Engine) Run(ctx context.Context, collection string, p pipeline.Pipeline, params Params) (Page, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	docs, total, err := e.store.AggregatePage(ctx, collection, p, store.Window{Offset: params.Offset(), Limit: params.Limit})
	if err != nil {
		return Page{}, apperr.Wrap(apperr.KindStoreFailure, "failed to load "+collection, err)
	}
	return NewPage(docs, total, params), nil
}

// NewPage computes the metadata for a window of total documents.
func NewPage(docs []store.Document, total int64, params Params) Page {
	if docs == nil {
		docs = []store.Document{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return Page{
		Docs:       docs,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
		HasPrev:    params.Page > 1,
		HasNext:    params.Page < totalPages,
	}
}
