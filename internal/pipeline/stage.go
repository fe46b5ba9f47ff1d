package pipeline

import "strings"

// Stage is one step of a pipeline. Stores interpret stages in order.
type Stage interface {
	Op() string
}

// Pipeline is an ordered sequence of stages executed by a store as one query.
type Pipeline []Stage

// Append returns a copy of p with the given stages added at the end.
func (p Pipeline) Append(stages ...Stage) Pipeline {
	out := make(Pipeline, 0, len(p)+len(stages))
	out = append(out, p...)
	return append(out, stages...)
}

// Ops lists the operation names of every stage, in order.
func (p Pipeline) Ops() []string {
	ops := make([]string, len(p))
	for i, stage := range p {
		ops[i] = stage.Op()
	}
	return ops
}

// String renders the pipeline as a compact arrow-separated list of ops.
func (p Pipeline) String() string {
	return strings.Join(p.Ops(), " -> ")
}

// Search narrows documents to those whose Fields contain every term of Text.
type Search struct {
	Fields []string
	Text   string
}

func (Search) Op() string { return "search" }

// Match keeps documents whose Field equals Value.
type Match struct {
	Field string
	Value any
}

func (Match) Op() string { return "match" }

// MatchAny keeps documents whose Field equals one of Values.
type MatchAny struct {
	Field  string
	Values []string
}

func (MatchAny) Op() string { return "matchAny" }

// MatchRelated keeps documents referenced by at least one row of Collection
// whose ForeignField equals the document's LocalField and which satisfies Where.
type MatchRelated struct {
	Collection   string
	LocalField   string
	ForeignField string
	Where        []Match
}

func (MatchRelated) Op() string { return "matchRelated" }

// Lookup joins the single document of From whose ForeignField equals LocalField
// and stores the selected Fields under As, replacing any value already there.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Fields       []string
}

func (Lookup) Op() string { return "lookup" }

// Count stores under As the number of rows in From that reference the document.
type Count struct {
	From         string
	LocalField   string
	ForeignField string
	Where        []Match
	As           string
}

func (Count) Op() string { return "count" }

// Exists stores under As whether any row in From references the document and satisfies Where.
type Exists struct {
	From         string
	LocalField   string
	ForeignField string
	Where        []Match
	As           string
}

func (Exists) Op() string { return "exists" }

// Accumulator collects Field from every grouped document into a list stored under As.
type Accumulator struct {
	As    string
	Field string
}

// Group folds all documents into a single bucket. An empty input yields no bucket.
type Group struct {
	CountAs string
	Push    []Accumulator
}

func (Group) Op() string { return "group" }

// SortKey orders by Field, descending when Desc is set.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort orders documents by Keys.
type Sort struct {
	Keys []SortKey
}

func (Sort) Op() string { return "sort" }

// StableKeys returns the sort keys with an id tie-breaker appended, so that
// repeated reads over unchanged data produce the same order.
func (s Sort) StableKeys() []SortKey {
	keys := make([]SortKey, 0, len(s.Keys)+1)
	keys = append(keys, s.Keys...)
	for _, key := range keys {
		if key.Field == FieldID {
			return keys
		}
	}
	desc := false
	if len(keys) > 0 {
		desc = keys[len(keys)-1].Desc
	}
	return append(keys, SortKey{Field: FieldID, Desc: desc})
}

// Project keeps only Fields (dotted paths allowed) on every document.
type Project struct {
	Fields []string
}

func (Project) Op() string { return "project" }
