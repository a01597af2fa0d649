package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/cal/internal/dbx"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUndefinedTable  = "42P01"
	pgUniqueViolation = "23505"
)

// PostgresStore implements rowstore.Store over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresStore struct {
	db     dbx.DBTX
	schema rowstore.Schema
	sb     sq.StatementBuilderType
}

// NewPostgresStore constructs a store bound to db that accepts the tables in schema.
func NewPostgresStore(db dbx.DBTX, schema rowstore.Schema) *PostgresStore {
	return &PostgresStore{
		db:     db,
		schema: schema,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) Select(ctx context.Context, table string, q rowstore.Query) ([]rowstore.Row, error) {
	t, err := s.schema.Lookup(table)
	if err != nil {
		return nil, err
	}
	if err := t.CheckQuery(q); err != nil {
		return nil, err
	}

	b := s.sb.Select(quoteAll(t.Columns)...).From(t.Name)
	for _, c := range q.Where {
		b = b.Where(condSql(c))
	}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		b = b.OrderBy(quote(q.OrderBy) + " " + dir)
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("select", table, err)
	}
	defer rows.Close()

	result := []rowstore.Row{}
	for rows.Next() {
		vals := make([]any, len(t.Columns))
		ptrs := make([]any, len(t.Columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		result = append(result, toRow(t.Columns, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, classify("select", table, err)
	}
	return result, nil
}

func (s *PostgresStore) Insert(ctx context.Context, table string, row rowstore.Row) (rowstore.Row, error) {
	t, err := s.schema.Lookup(table)
	if err != nil {
		return nil, err
	}
	if err := t.CheckRow(row); err != nil {
		return nil, err
	}

	cols, vals := split(row)
	query, args, err := s.sb.Insert(t.Name).
		Columns(quoteAll(cols)...).
		Values(vals...).
		Suffix("RETURNING " + strings.Join(quoteAll(t.Columns), ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	out := make([]any, len(t.Columns))
	ptrs := make([]any, len(t.Columns))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(ptrs...); err != nil {
		return nil, classify("insert", table, err)
	}
	return toRow(t.Columns, out), nil
}

func (s *PostgresStore) Upsert(ctx context.Context, table string, row rowstore.Row, conflict ...string) error {
	t, err := s.schema.Lookup(table)
	if err != nil {
		return err
	}
	if err := t.CheckRow(row); err != nil {
		return err
	}
	if len(conflict) == 0 && len(t.Keys) > 0 {
		conflict = t.Keys[0]
	}
	if !slices.ContainsFunc(t.Keys, func(k []string) bool { return slices.Equal(k, conflict) }) {
		return fmt.Errorf("%w: no unique key on %s(%s)", rowstore.ErrInvalidQuery, table, strings.Join(conflict, ","))
	}

	cols, vals := split(row)
	var sets []string
	for _, c := range cols {
		if !slices.Contains(conflict, c) {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", quote(c), quote(c)))
		}
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	query, args, err := s.sb.Insert(t.Name).
		Columns(quoteAll(cols)...).
		Values(vals...).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) %s", strings.Join(quoteAll(conflict), ", "), action)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classify("upsert", table, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, table string, patch rowstore.Row, where ...rowstore.Cond) error {
	t, err := s.schema.Lookup(table)
	if err != nil {
		return err
	}
	if err := t.CheckRow(patch); err != nil {
		return err
	}
	if err := t.CheckConds(where); err != nil {
		return err
	}

	b := s.sb.Update(t.Name)
	cols, vals := split(patch)
	for i, c := range cols {
		b = b.Set(quote(c), vals[i])
	}
	for _, c := range where {
		b = b.Where(condSql(c))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classify("update", table, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, table string, where ...rowstore.Cond) error {
	t, err := s.schema.Lookup(table)
	if err != nil {
		return err
	}
	if err := t.CheckConds(where); err != nil {
		return err
	}

	b := s.sb.Delete(t.Name)
	for _, c := range where {
		b = b.Where(condSql(c))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classify("delete", table, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, table string, where ...rowstore.Cond) (int64, error) {
	t, err := s.schema.Lookup(table)
	if err != nil {
		return 0, err
	}
	if err := t.CheckConds(where); err != nil {
		return 0, err
	}

	b := s.sb.Select("COUNT(*)").From(t.Name)
	for _, c := range where {
		b = b.Where(condSql(c))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("count", table, err)
	}
	return n, nil
}

func condSql(c rowstore.Cond) sq.Sqlizer {
	col := quote(c.Column)
	switch c.Op {
	case rowstore.OpNeq:
		return sq.NotEq{col: c.Value}
	case rowstore.OpLt:
		return sq.Lt{col: c.Value}
	case rowstore.OpLte:
		return sq.LtOrEq{col: c.Value}
	case rowstore.OpGt:
		return sq.Gt{col: c.Value}
	case rowstore.OpGte:
		return sq.GtOrEq{col: c.Value}
	}
	return sq.Eq{col: c.Value}
}

// split returns row's columns in sorted order with their values aligned.
func split(row rowstore.Row) ([]string, []any) {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = row[c]
	}
	return cols, vals
}

func quote(col string) string {
	return `"` + col + `"`
}

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quote(c)
	}
	return out
}

func toRow(cols []string, vals []any) rowstore.Row {
	row := make(rowstore.Row, len(cols))
	for i, c := range cols {
		row[c] = normalize(vals[i])
	}
	return row
}

// normalize converts driver values to the types rowstore rows carry.
func normalize(v any) any {
	switch x := v.(type) {
	case time.Time:
		return timex.FormatTimestamp(x)
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

func classify(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable:
			return fmt.Errorf("%s %s: %w", op, table, rowstore.ErrTableMissing)
		case pgUniqueViolation:
			return fmt.Errorf("%s %s: %w: %s", op, table, rowstore.ErrConflict, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
