package rowstore

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/cal/internal/common"
)

// Table describes a whitelisted table: its columns, which of them the
// server fills in when a row is inserted without them, and its unique keys
// (the first one is the primary key).
type Table struct {
	Name      string
	Columns   []string
	Generated []string
	Keys      [][]string
}

// Has reports whether col belongs to the table.
func (t Table) Has(col string) bool {
	return slices.Contains(t.Columns, col)
}

// Schema is the set of tables a Store will accept.
type Schema map[string]Table

// DefaultSchema is the calendar's remote schema.
var DefaultSchema = Schema{
	common.TableAppConfig: {
		Name:    common.TableAppConfig,
		Columns: []string{"key", "value"},
		Keys:    [][]string{{"key"}},
	},
	common.TableAdmins: {
		Name:      common.TableAdmins,
		Columns:   []string{"id", "role", "name", "username", "email", "hashed_password", "created_at"},
		Generated: []string{"id"},
		Keys:      [][]string{{"id"}},
	},
	common.TableUsers: {
		Name:    common.TableUsers,
		Columns: []string{"id", "name", "device_id", "last_seen"},
		Keys:    [][]string{{"id"}},
	},
	common.TableAuditLogs: {
		Name:      common.TableAuditLogs,
		Columns:   []string{"id", "admin_id", "admin_name", "action", "details", "timestamp"},
		Generated: []string{"id"},
		Keys:      [][]string{{"id"}},
	},
	common.TableReminders: {
		Name:      common.TableReminders,
		Columns:   []string{"id", "user_id", "event_id", "event_time", "notified"},
		Generated: []string{"id"},
		Keys:      [][]string{{"id"}, {"user_id", "event_id"}},
	},
	common.TableEvents: {
		Name: common.TableEvents,
		Columns: []string{"id", "title", "description", "date", "start_time", "end_time",
			"poster_url", "rsvp_link", "location", "category", "color", "created_by", "updated_at"},
		Generated: []string{"id"},
		Keys:      [][]string{{"id"}},
	},
}

// Lookup returns the table definition or ErrUnknownTable.
func (s Schema) Lookup(name string) (Table, error) {
	t, ok := s[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// CheckRow verifies every key of row is a column of t and that row is not empty.
func (t Table) CheckRow(row Row) error {
	if len(row) == 0 {
		return invalidf("empty row for %s", t.Name)
	}
	for col := range row {
		if !t.Has(col) {
			return invalidf("unknown column %s.%s", t.Name, col)
		}
	}
	return nil
}

// CheckColumns verifies each name is a column of t.
func (t Table) CheckColumns(cols ...string) error {
	for _, col := range cols {
		if !t.Has(col) {
			return invalidf("unknown column %s.%s", t.Name, col)
		}
	}
	return nil
}

// CheckConds validates columns and operators of a filter.
func (t Table) CheckConds(conds []Cond) error {
	for _, c := range conds {
		if !t.Has(c.Column) {
			return invalidf("unknown column %s.%s", t.Name, c.Column)
		}
		if !c.Op.valid() {
			return invalidf("unsupported operator %q", c.Op)
		}
	}
	return nil
}

// CheckQuery validates a full Query against t.
func (t Table) CheckQuery(q Query) error {
	if err := t.CheckConds(q.Where); err != nil {
		return err
	}
	if q.OrderBy != "" && !t.Has(q.OrderBy) {
		return invalidf("unknown order column %s.%s", t.Name, q.OrderBy)
	}
	if q.Limit < 0 {
		return invalidf("negative limit")
	}
	return nil
}
