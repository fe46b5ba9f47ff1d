// Package postgres implements the entity store over PostgreSQL-compatible
// databases by compiling pipelines into single SQL statements.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

// Store provides PostgreSQL-backed persistence for every collection.
type Store struct {
	pool db.Pool
	now  func() time.Time
}

// New constructs a store backed by the given pool.
func New(pool db.Pool) *Store {
	return &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// FindByID returns the document with the given id.
func (s *Store) FindByID(ctx context.Context, collection, id string) (doc store.Document, err error) {
	defer observe("find_by_id", collection, time.Now(), &err)

	docs, err := s.aggregate(ctx, collection, pipeline.Pipeline{pipeline.Match{Field: pipeline.FieldID, Value: id}}, store.Window{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

// FindOne returns the oldest document matching every filter entry.
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter) (doc store.Document, err error) {
	defer observe("find_one", collection, time.Now(), &err)

	p := make(pipeline.Pipeline, 0, len(filter)+1)
	for _, field := range store.SortedKeys(filter) {
		p = append(p, pipeline.Match{Field: field, Value: filter[field]})
	}
	p = append(p, pipeline.Sort{Keys: []pipeline.SortKey{{Field: pipeline.FieldCreatedAt}}})

	docs, err := s.aggregate(ctx, collection, p, store.Window{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

// Create inserts doc, assigning an id and timestamps when missing.
func (s *Store) Create(ctx context.Context, collection string, doc store.Document) (created store.Document, err error) {
	defer observe("create", collection, time.Now(), &err)

	schema, err := store.Lookup(collection)
	if err != nil {
		return nil, err
	}

	values := store.Flatten(doc)
	if id, _ := values["id"].(string); id == "" {
		values["id"] = models.NewID()
	}
	now := s.now()
	if _, ok := values["createdAt"].(time.Time); !ok {
		values["createdAt"] = now
	}
	if schema.Timestamps {
		if _, ok := values["updatedAt"].(time.Time); !ok {
			values["updatedAt"] = now
		}
	}

	fields := store.SortedKeys(values)
	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		col, ok := schema.Column(field)
		if !ok {
			return nil, fmt.Errorf("unknown field %q for %s", field, collection)
		}
		columns[i] = col
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = values[field]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		schema.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), returning(schema))

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "insert "+collection)
	}
	docs, err := scanDocuments(rows, nil)
	if err != nil {
		return nil, translate(err, "insert "+collection)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("insert %s: no row returned", collection)
	}
	return docs[0], nil
}

// UpdateByID applies patch, whose keys may be dotted paths, and returns the updated document.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, patch store.Document) (updated store.Document, err error) {
	defer observe("update_by_id", collection, time.Now(), &err)

	schema, err := store.Lookup(collection)
	if err != nil {
		return nil, err
	}

	changes := store.Flatten(patch)
	delete(changes, "id")
	if schema.Timestamps {
		changes["updatedAt"] = s.now()
	}
	if len(changes) == 0 {
		return s.FindByID(ctx, collection, id)
	}

	args := []any{id}
	sets := make([]string, 0, len(changes))
	for _, field := range store.SortedKeys(changes) {
		col, ok := schema.Column(field)
		if !ok {
			return nil, fmt.Errorf("unknown field %q for %s", field, collection)
		}
		args = append(args, changes[field])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		schema.Table, strings.Join(sets, ", "), returning(schema))

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err, "update "+collection)
	}
	docs, err := scanDocuments(rows, nil)
	if err != nil {
		return nil, translate(err, "update "+collection)
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

// DeleteByID removes the document. Referencing rows are removed by ON DELETE CASCADE.
func (s *Store) DeleteByID(ctx context.Context, collection, id string) (err error) {
	defer observe("delete_by_id", collection, time.Now(), &err)

	schema, err := store.Lookup(collection)
	if err != nil {
		return err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", schema.Table), id)
	if err != nil {
		return translate(err, "delete "+collection)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Aggregate runs the pipeline as one statement.
func (s *Store) Aggregate(ctx context.Context, collection string, p pipeline.Pipeline) (docs []store.Document, err error) {
	defer observe("aggregate", collection, time.Now(), &err)
	return s.aggregate(ctx, collection, p, store.Window{})
}

// AggregatePage counts the pipeline's matches and reads one window of them
// inside a single read-only repeatable-read transaction.
func (s *Store) AggregatePage(ctx context.Context, collection string, p pipeline.Pipeline, w store.Window) (docs []store.Document, total int64, err error) {
	defer observe("aggregate_page", collection, time.Now(), &err)

	q, err := compile(collection, p)
	if err != nil {
		return nil, 0, err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := tx.QueryRow(ctx, q.countSQL(), q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", collection, err)
	}

	sql, args := q.pageSQL(w)
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", collection, err)
	}
	docs, err = scanDocuments(rows, q)
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", collection, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit read transaction: %w", err)
	}
	return docs, total, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) aggregate(ctx context.Context, collection string, p pipeline.Pipeline, w store.Window) ([]store.Document, error) {
	q, err := compile(collection, p)
	if err != nil {
		return nil, err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sql, args := q.pageSQL(w)
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	docs, err := scanDocuments(rows, q)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	return docs, nil
}

// scanDocuments turns each row into a document keyed by column alias. When q
// is set, empty lookups collapse to nil and projections are applied.
func scanDocuments(rows pgx.Rows, q *query) ([]store.Document, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	docs := []store.Document{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		doc := store.Document{}
		for i, fd := range fields {
			store.SetPath(doc, fd.Name, values[i])
		}
		if q != nil {
			for _, as := range q.lookups {
				if allNil(store.GetPath(doc, as)) {
					store.SetPath(doc, as, nil)
				}
			}
			if q.project != nil {
				doc = store.Project(doc, q.project)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func allNil(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return v == nil
	}
	for _, value := range m {
		if value != nil {
			return false
		}
	}
	return true
}

func returning(schema store.Collection) string {
	cols := make([]string, len(schema.Fields))
	for i, field := range schema.Fields {
		cols[i] = field.Column + " AS " + pgx.Identifier{field.Path}.Sanitize()
	}
	return strings.Join(cols, ", ")
}

func translate(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %s: %w", action, pgErr.ConstraintName, store.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: %s: %w", action, pgErr.ConstraintName, store.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}

func observe(operation, collection string, start time.Time, err *error) {
	metrics.RecordStoreOperation(operation, collection, time.Since(start), *err)
}

var _ store.Store = (*Store)(nil)
