// Package rowstore describes the remote relational store as the client sees
// it: a handful of tables addressed by name, read and written as loosely
// typed rows with simple equality/ordering filters.
//
// The same contract is implemented by the Postgres-backed server storage,
// by the gRPC client that talks to it, and by Memory for tests.
package rowstore

import (
	"context"
	"errors"
	"fmt"
)

// Row is a single table row keyed by column name. Values are restricted to
// string, bool, int64, float64 and nil; timestamps travel as RFC 3339 strings.
type Row map[string]any

// String returns the column value as a string, or "" if absent or not a string.
func (r Row) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Bool returns the column value as a bool, or false.
func (r Row) Bool(col string) bool {
	b, _ := r[col].(bool)
	return b
}

// Int returns numeric column values as int64.
func (r Row) Int(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Op is a comparison operator in a filter condition.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpGt  Op = "gt"
	OpGte Op = "gte"
)

func (o Op) valid() bool {
	switch o {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

// Cond is one "column op value" predicate. Conditions in a list are ANDed.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Shorthands for the predicates the client builds. Other operators arrive
// over the wire as plain Cond values.
func Eq(col string, v any) Cond  { return Cond{Column: col, Op: OpEq, Value: v} }
func Lt(col string, v any) Cond  { return Cond{Column: col, Op: OpLt, Value: v} }
func Gte(col string, v any) Cond { return Cond{Column: col, Op: OpGte, Value: v} }

// Query selects rows. Zero Limit means no limit.
type Query struct {
	Where   []Cond
	OrderBy string
	Desc    bool
	Limit   int
}

// Store is the table-scoped remote store.
//
// Select returns an empty slice (not an error) when nothing matches.
// Insert returns the stored row including server-assigned columns.
// Upsert overwrites the conflicting row identified by conflict columns.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Upsert(ctx context.Context, table string, row Row, conflict ...string) error
	Update(ctx context.Context, table string, patch Row, where ...Cond) error
	Delete(ctx context.Context, table string, where ...Cond) error
	Count(ctx context.Context, table string, where ...Cond) (int64, error)
}

var (
	// ErrTableMissing means the backing table has not been provisioned.
	ErrTableMissing = errors.New("table does not exist")
	// ErrConflict is a unique constraint violation on Insert.
	ErrConflict = errors.New("unique constraint violation")
	// ErrUnknownTable is returned for tables outside the schema.
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidQuery covers unknown columns, bad operators and empty writes.
	ErrInvalidQuery = errors.New("invalid query")
)

// First returns the first row of a Select, or nil when there is none.
func First(ctx context.Context, s Store, table string, where ...Cond) (Row, error) {
	rows, err := s.Select(ctx, table, Query{Where: where, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
