package models

import (
	"time"

	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
)

// Reminder is the per-event reminder state. Time is copied from the event.
type Reminder struct {
	Time     time.Time `json:"time"`
	Notified bool      `json:"notified"`
}

// Reminders maps event id to reminder.
type Reminders map[string]Reminder

// ReminderFromRow maps a reminders row and returns its event id.
func ReminderFromRow(r rowstore.Row) (string, Reminder, error) {
	t, err := timex.ParseTimestamp(r.String("event_time"))
	if err != nil {
		return "", Reminder{}, err
	}
	return r.String("event_id"), Reminder{Time: t, Notified: r.Bool("notified")}, nil
}

// SyncResult says how far a local-first mutation got.
type SyncResult int

const (
	// Applied: local write done and the remote write (if any) succeeded.
	Applied SyncResult = iota
	// AppliedLocalOnly: local write done, the remote write failed.
	AppliedLocalOnly
	// Failed: the local write itself failed.
	Failed
)

func (r SyncResult) String() string {
	switch r {
	case Applied:
		return "applied"
	case AppliedLocalOnly:
		return "applied locally only"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Permission is the notification permission state.
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionDefault     Permission = "default"
	PermissionUnsupported Permission = "unsupported"
)
