package rowstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/cal/internal/timex"
	"github.com/google/uuid"
)

// Memory is an in-process Store. It enforces the schema, the tables' unique
// keys and fills generated ids with UUIDs, which is enough to stand in for
// the hosted database in tests and in offline demos.
type Memory struct {
	mu     sync.Mutex
	schema Schema
	tables map[string][]Row

	// Missing lists tables that behave as not provisioned.
	Missing map[string]bool

	// Fail, when set, is consulted before every operation; a non-nil result is
	// returned as the operation's error. op is one of select, insert, upsert,
	// update, delete, count.
	Fail func(op, table string) error
}

func NewMemory(schema Schema) *Memory {
	return &Memory{schema: schema, tables: make(map[string][]Row), Missing: make(map[string]bool)}
}

// Rows returns a copy of every row currently stored in table.
func (m *Memory) Rows(table string) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		out = append(out, maps.Clone(r))
	}
	return out
}

func (m *Memory) enter(op, table string) (Table, error) {
	if m.Fail != nil {
		if err := m.Fail(op, table); err != nil {
			return Table{}, err
		}
	}
	t, err := m.schema.Lookup(table)
	if err != nil {
		return Table{}, err
	}
	if m.Missing[table] {
		return Table{}, fmt.Errorf("%w: %s", ErrTableMissing, table)
	}
	return t, nil
}

func (m *Memory) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.enter("select", table)
	if err != nil {
		return nil, err
	}
	if err := t.CheckQuery(q); err != nil {
		return nil, err
	}

	var out []Row
	for _, r := range m.tables[table] {
		if matches(r, q.Where) {
			out = append(out, maps.Clone(r))
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][q.OrderBy], out[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.enter("insert", table)
	if err != nil {
		return nil, err
	}
	if err := t.CheckRow(row); err != nil {
		return nil, err
	}

	stored := m.complete(t, row)
	for _, key := range t.Keys {
		if m.find(table, key, stored) >= 0 {
			return nil, fmt.Errorf("%w: %s(%s)", ErrConflict, table, strings.Join(key, ","))
		}
	}
	m.tables[table] = append(m.tables[table], stored)
	return maps.Clone(stored), nil
}

func (m *Memory) Upsert(ctx context.Context, table string, row Row, conflict ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.enter("upsert", table)
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
		return invalidf("no unique key on %s(%s)", table, strings.Join(conflict, ","))
	}

	if i := m.find(table, conflict, row); i >= 0 {
		existing := m.tables[table][i]
		for col, v := range row {
			existing[col] = v
		}
		return nil
	}
	m.tables[table] = append(m.tables[table], m.complete(t, row))
	return nil
}

func (m *Memory) Update(ctx context.Context, table string, patch Row, where ...Cond) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.enter("update", table)
	if err != nil {
		return err
	}
	if err := t.CheckRow(patch); err != nil {
		return err
	}
	if err := t.CheckConds(where); err != nil {
		return err
	}
	for _, r := range m.tables[table] {
		if matches(r, where) {
			for col, v := range patch {
				r[col] = v
			}
		}
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, table string, where ...Cond) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.enter("delete", table)
	if err != nil {
		return err
	}
	if err := t.CheckConds(where); err != nil {
		return err
	}
	m.tables[table] = slices.DeleteFunc(m.tables[table], func(r Row) bool { return matches(r, where) })
	return nil
}

func (m *Memory) Count(ctx context.Context, table string, where ...Cond) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.enter("count", table)
	if err != nil {
		return 0, err
	}
	if err := t.CheckConds(where); err != nil {
		return 0, err
	}
	var n int64
	for _, r := range m.tables[table] {
		if matches(r, where) {
			n++
		}
	}
	return n, nil
}

// complete copies row, adds generated ids and nils for absent columns.
func (m *Memory) complete(t Table, row Row) Row {
	out := make(Row, len(t.Columns))
	for _, col := range t.Columns {
		out[col] = nil
	}
	for col, v := range row {
		out[col] = v
	}
	for _, col := range t.Generated {
		if out[col] == nil {
			out[col] = uuid.NewString()
		}
	}
	return out
}

func (m *Memory) find(table string, key []string, row Row) int {
	for i, r := range m.tables[table] {
		same := true
		for _, col := range key {
			if row[col] == nil || compare(r[col], row[col]) != 0 {
				same = false
				break
			}
		}
		if same {
			return i
		}
	}
	return -1
}

func matches(r Row, where []Cond) bool {
	for _, c := range where {
		v := r[c.Column]
		if c.Value == nil || v == nil {
			// SQL semantics: only "= NULL" / "<> NULL" style checks are meaningful
			switch c.Op {
			case OpEq:
				if v != c.Value {
					return false
				}
			case OpNeq:
				if v == c.Value {
					return false
				}
			default:
				return false
			}
			continue
		}
		cmp := compare(v, c.Value)
		var ok bool
		switch c.Op {
		case OpEq:
			ok = cmp == 0
		case OpNeq:
			ok = cmp != 0
		case OpLt:
			ok = cmp < 0
		case OpLte:
			ok = cmp <= 0
		case OpGt:
			ok = cmp > 0
		case OpGte:
			ok = cmp >= 0
		}
		if !ok {
			return false
		}
	}
	return true
}

// compare orders nil first, then numbers, bools, timestamps and strings.
// Strings that both parse as timestamps are compared as instants.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := timex.ParseTimestamp(sa); err == nil {
		if tb, err := timex.ParseTimestamp(sb); err == nil {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(sa, sb)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
