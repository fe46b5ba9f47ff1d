package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/pipeline"
	"github.com/vidtube/backend/internal/store"
)

// column is one output column: the document path it fills and the SQL producing it.
type column struct {
	path string
	expr string
}

// query is a pipeline compiled to a single SELECT over the collection's table.
type query struct {
	schema  store.Collection
	columns []column
	joins   []string
	where   []string
	order   []string
	args    []any
	group   *pipeline.Group
	pushes  []column
	project []string
	lookups []string
	aliases int
}

func compile(collection string, p pipeline.Pipeline) (*query, error) {
	schema, err := store.Lookup(collection)
	if err != nil {
		return nil, err
	}

	q := &query{schema: schema}
	for _, field := range schema.Fields {
		q.columns = append(q.columns, column{path: field.Path, expr: "t." + field.Column})
	}

	for _, stage := range p {
		if q.group != nil {
			if _, ok := stage.(pipeline.Project); !ok {
				return nil, fmt.Errorf("%s stage after group is not supported", stage.Op())
			}
		}
		if err := q.add(stage); err != nil {
			return nil, fmt.Errorf("compile %s stage on %s: %w", stage.Op(), collection, err)
		}
	}
	return q, nil
}

func (q *query) add(stage pipeline.Stage) error {
	switch st := stage.(type) {
	case pipeline.Search:
		parts := make([]string, 0, len(st.Fields))
		for _, field := range st.Fields {
			expr, err := q.expr(field)
			if err != nil {
				return err
			}
			parts = append(parts, expr)
		}
		if len(parts) == 0 {
			return fmt.Errorf("search needs at least one field")
		}
		q.where = append(q.where, fmt.Sprintf(
			"to_tsvector('english', %s) @@ plainto_tsquery('english', %s)",
			strings.Join(parts, " || ' ' || "), q.arg(st.Text),
		))

	case pipeline.Match:
		expr, err := q.expr(st.Field)
		if err != nil {
			return err
		}
		if st.Value == nil {
			q.where = append(q.where, expr+" IS NULL")
			return nil
		}
		q.where = append(q.where, expr+" = "+q.arg(st.Value))

	case pipeline.MatchAny:
		expr, err := q.expr(st.Field)
		if err != nil {
			return err
		}
		q.where = append(q.where, expr+" = ANY("+q.arg(st.Values)+")")

	case pipeline.MatchRelated:
		sub, err := q.related(st.Collection, st.LocalField, st.ForeignField, st.Where, "SELECT 1")
		if err != nil {
			return err
		}
		q.where = append(q.where, "EXISTS ("+sub+")")

	case pipeline.Lookup:
		foreign, err := store.Lookup(st.From)
		if err != nil {
			return err
		}
		local, err := q.expr(st.LocalField)
		if err != nil {
			return err
		}
		foreignCol, ok := foreign.Column(st.ForeignField)
		if !ok {
			return fmt.Errorf("unknown field %q for %s", st.ForeignField, st.From)
		}
		alias := q.alias("j")
		q.joins = append(q.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s", foreign.Table, alias, alias, foreignCol, local))
		q.drop(st.As)
		for _, field := range st.Fields {
			col, ok := foreign.Column(field)
			if !ok {
				return fmt.Errorf("unknown field %q for %s", field, st.From)
			}
			q.columns = append(q.columns, column{path: st.As + "." + field, expr: alias + "." + col})
		}
		q.lookups = append(q.lookups, st.As)

	case pipeline.Count:
		sub, err := q.related(st.From, st.LocalField, st.ForeignField, st.Where, "SELECT COUNT(*)")
		if err != nil {
			return err
		}
		q.drop(st.As)
		q.columns = append(q.columns, column{path: st.As, expr: "(" + sub + ")"})

	case pipeline.Exists:
		sub, err := q.related(st.From, st.LocalField, st.ForeignField, st.Where, "SELECT 1")
		if err != nil {
			return err
		}
		q.drop(st.As)
		q.columns = append(q.columns, column{path: st.As, expr: "EXISTS (" + sub + ")"})

	case pipeline.Group:
		for _, acc := range st.Push {
			expr, err := q.expr(acc.Field)
			if err != nil {
				return err
			}
			q.pushes = append(q.pushes, column{path: acc.As, expr: expr})
		}
		group := st
		q.group = &group

	case pipeline.Sort:
		q.order = q.order[:0]
		for _, key := range st.StableKeys() {
			expr, err := q.expr(key.Field)
			if err != nil {
				return err
			}
			direction := "ASC"
			if key.Desc {
				direction = "DESC"
			}
			q.order = append(q.order, expr+" "+direction)
		}

	case pipeline.Project:
		q.project = append([]string(nil), st.Fields...)

	default:
		return fmt.Errorf("unsupported stage %T", stage)
	}
	return nil
}

// related builds a correlated subquery over collection rows referencing the current row.
func (q *query) related(collection, localField, foreignField string, where []pipeline.Match, head string) (string, error) {
	foreign, err := store.Lookup(collection)
	if err != nil {
		return "", err
	}
	local, err := q.expr(localField)
	if err != nil {
		return "", err
	}
	foreignCol, ok := foreign.Column(foreignField)
	if !ok {
		return "", fmt.Errorf("unknown field %q for %s", foreignField, collection)
	}

	alias := q.alias("r")
	conds := []string{fmt.Sprintf("%s.%s = %s", alias, foreignCol, local)}
	for _, m := range where {
		col, ok := foreign.Column(m.Field)
		if !ok {
			return "", fmt.Errorf("unknown field %q for %s", m.Field, collection)
		}
		if m.Value == nil {
			conds = append(conds, fmt.Sprintf("%s.%s IS NULL", alias, col))
			continue
		}
		conds = append(conds, fmt.Sprintf("%s.%s = %s", alias, col, q.arg(m.Value)))
	}
	return fmt.Sprintf("%s FROM %s %s WHERE %s", head, foreign.Table, alias, strings.Join(conds, " AND ")), nil
}

func (q *query) expr(path string) (string, error) {
	for _, c := range q.columns {
		if c.path == path {
			return c.expr, nil
		}
	}
	return "", fmt.Errorf("unknown field %q for %s", path, q.schema.Name)
}

func (q *query) drop(path string) {
	kept := q.columns[:0]
	for _, c := range q.columns {
		if c.path == path || strings.HasPrefix(c.path, path+".") {
			continue
		}
		kept = append(kept, c)
	}
	q.columns = kept
}

func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

func (q *query) alias(prefix string) string {
	q.aliases++
	return prefix + strconv.Itoa(q.aliases)
}

func (q *query) from() string {
	var b strings.Builder
	b.WriteString(" FROM ")
	b.WriteString(q.schema.Table)
	b.WriteString(" t")
	for _, join := range q.joins {
		b.WriteString(" ")
		b.WriteString(join)
	}
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	return b.String()
}

// selectSQL renders the query. Group pipelines fold into at most one row.
func (q *query) selectSQL(ordered bool) string {
	if q.group != nil {
		return q.groupSQL()
	}

	selects := make([]string, len(q.columns))
	for i, c := range q.columns {
		selects[i] = c.expr + " AS " + pgx.Identifier{c.path}.Sanitize()
	}
	sql := "SELECT " + strings.Join(selects, ", ") + q.from()
	if ordered && len(q.order) > 0 {
		sql += " ORDER BY " + strings.Join(q.order, ", ")
	}
	return sql
}

func (q *query) groupSQL() string {
	var selects []string
	if q.group.CountAs != "" {
		selects = append(selects, "COUNT(*) AS "+pgx.Identifier{q.group.CountAs}.Sanitize())
	}
	for _, push := range q.pushes {
		selects = append(selects, fmt.Sprintf("array_agg(%s ORDER BY t.created_at, t.id) AS %s", push.expr, pgx.Identifier{push.path}.Sanitize()))
	}
	return "SELECT " + strings.Join(selects, ", ") + q.from() + " HAVING COUNT(*) > 0"
}

// countSQL counts the rows selectSQL would return. It wraps the full select so
// that every bound parameter stays referenced.
func (q *query) countSQL() string {
	return "SELECT COUNT(*) FROM (" + q.selectSQL(false) + ") AS q"
}

// pageSQL appends a window to selectSQL and returns the arguments it needs.
func (q *query) pageSQL(w store.Window) (string, []any) {
	args := append([]any(nil), q.args...)
	sql := q.selectSQL(true)
	if w.Limit > 0 {
		args = append(args, w.Limit)
		sql += " LIMIT $" + strconv.Itoa(len(args))
	}
	if w.Offset > 0 {
		args = append(args, w.Offset)
		sql += " OFFSET $" + strconv.Itoa(len(args))
	}
	return sql, args
}
