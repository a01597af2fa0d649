package models

import (
	"time"

	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
)

// AuditEntry records one administrative action. Entries are never changed.
type AuditEntry struct {
	ID        string
	AdminID   string
	AdminName string
	Action    string
	Details   string
	Timestamp time.Time
}

func AuditEntryFromRow(r rowstore.Row) AuditEntry {
	ts, _ := timex.ParseTimestamp(r.String("timestamp"))
	return AuditEntry{
		ID:        r.String("id"),
		AdminID:   r.String("admin_id"),
		AdminName: r.String("admin_name"),
		Action:    r.String("action"),
		Details:   r.String("details"),
		Timestamp: ts,
	}
}
