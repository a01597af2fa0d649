package services

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/notify"
	"github.com/dmitrijs2005/cal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
)

// reminderRetention is how long a notified reminder is kept after its time.
const reminderRetention = 7 * 24 * time.Hour

// ReminderService keeps per-event reminders. The local copy is written first
// and is authoritative for this device; when a user id is given the remote
// reminders table is updated best-effort afterwards. Nothing is rolled back
// or retried: SyncWithServer is the only path that heals drift, in favour of
// the server.
type ReminderService interface {
	RequestPermission(ctx context.Context) bool
	PermissionStatus() models.Permission
	RestorePermission(ctx context.Context)
	AddReminder(ctx context.Context, eventID string, eventTime time.Time, userID string) (models.SyncResult, error)
	RemoveReminder(ctx context.Context, eventID, userID string) (models.SyncResult, error)
	MarkAsNotified(ctx context.Context, eventID, userID string) (models.SyncResult, error)
	GetReminders(ctx context.Context) models.Reminders
	HasReminder(ctx context.Context, eventID string) bool
	SyncWithServer(ctx context.Context, userID string) error
	CleanupOldReminders(ctx context.Context, userID string) (models.SyncResult, error)
	SendNotification(ctx context.Context, title string, opts notify.Options) bool
	Acknowledge(ctx context.Context, eventID, title string, at time.Time) bool
	DispatchDue(ctx context.Context, userID string, titleOf func(eventID string) string) int
}

type reminderService struct {
	// mu serialises read-modify-write cycles on the local reminder map.
	mu sync.Mutex

	store    rowstore.Store
	local    metadata.Repository
	notifier notify.Notifier
	logger   logging.Logger
	lead     time.Duration
	now      func() time.Time
}

// NewReminderService returns a ReminderService. lead is how long before a
// reminder's time DispatchDue fires it.
func NewReminderService(store rowstore.Store, local metadata.Repository, notifier notify.Notifier, lead time.Duration, logger logging.Logger) ReminderService {
	return &reminderService{
		store:    store,
		local:    local,
		notifier: notifier,
		logger:   logger.With("service", "reminders"),
		lead:     lead,
		now:      time.Now,
	}
}

// RequestPermission asks the notifier for permission and remembers the
// answer. Unsupported notifiers and failures read as not granted.
func (s *reminderService) RequestPermission(ctx context.Context) bool {
	if !s.notifier.Supported() {
		s.logger.Warn(ctx, "notifications are not supported")
		return false
	}

	p, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		s.logger.Error(ctx, "permission request failed", "err", err)
		return false
	}
	if err := s.local.Set(ctx, KeyNotificationPermission, []byte(p)); err != nil {
		s.logger.Warn(ctx, "permission not persisted", "err", err)
	}
	return p == models.PermissionGranted
}

func (s *reminderService) PermissionStatus() models.Permission {
	if !s.notifier.Supported() {
		return models.PermissionUnsupported
	}
	return s.notifier.Permission()
}

// RestorePermission hands the remembered permission back to notifiers that
// can take it.
func (s *reminderService) RestorePermission(ctx context.Context) {
	r, ok := s.notifier.(interface{ Restore(models.Permission) })
	if !ok {
		return
	}
	v, err := s.local.Get(ctx, KeyNotificationPermission)
	if err != nil || len(v) == 0 {
		return
	}
	r.Restore(models.Permission(v))
}

// GetReminders returns the local reminders. Missing or corrupt data reads
// as no reminders.
func (s *reminderService) GetReminders(ctx context.Context) models.Reminders {
	v, err := s.local.Get(ctx, KeyReminders)
	if err != nil {
		s.logger.Warn(ctx, "reminders unreadable", "err", err)
		return models.Reminders{}
	}
	if len(v) == 0 {
		return models.Reminders{}
	}

	var r models.Reminders
	if err := json.Unmarshal(v, &r); err != nil || r == nil {
		s.logger.Warn(ctx, "reminders corrupt, ignoring", "err", err)
		return models.Reminders{}
	}
	return r
}

func (s *reminderService) save(ctx context.Context, r models.Reminders) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.local.Set(ctx, KeyReminders, data)
}

// modify applies fn to the local reminders under mu and saves them when fn
// reports a change.
func (s *reminderService) modify(ctx context.Context, fn func(r models.Reminders) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.GetReminders(ctx)
	if !fn(r) {
		return nil
	}
	return s.save(ctx, r)
}

func (s *reminderService) HasReminder(ctx context.Context, eventID string) bool {
	_, ok := s.GetReminders(ctx)[eventID]
	return ok
}

// remote runs a best-effort remote write when userID is set.
func (s *reminderService) remote(ctx context.Context, userID, op string, fn func() error) models.SyncResult {
	if userID == "" {
		return models.Applied
	}
	if err := fn(); err != nil {
		s.logger.Warn(ctx, "remote reminder write failed", "table", common.TableReminders, "op", op, "err", err)
		return models.AppliedLocalOnly
	}
	return models.Applied
}

func (s *reminderService) AddReminder(ctx context.Context, eventID string, eventTime time.Time, userID string) (models.SyncResult, error) {
	err := s.modify(ctx, func(r models.Reminders) bool {
		r[eventID] = models.Reminder{Time: eventTime, Notified: false}
		return true
	})
	if err != nil {
		return models.Failed, fmt.Errorf("save reminder: %w", err)
	}

	return s.remote(ctx, userID, "upsert", func() error {
		return s.store.Upsert(ctx, common.TableReminders, rowstore.Row{
			"user_id":    userID,
			"event_id":   eventID,
			"event_time": timex.FormatTimestamp(eventTime),
			"notified":   false,
		}, "user_id", "event_id")
	}), nil
}

func (s *reminderService) RemoveReminder(ctx context.Context, eventID, userID string) (models.SyncResult, error) {
	err := s.modify(ctx, func(r models.Reminders) bool {
		delete(r, eventID)
		return true
	})
	if err != nil {
		return models.Failed, fmt.Errorf("remove reminder: %w", err)
	}

	return s.remote(ctx, userID, "delete", func() error {
		return s.store.Delete(ctx, common.TableReminders,
			rowstore.Eq("user_id", userID), rowstore.Eq("event_id", eventID))
	}), nil
}

// MarkAsNotified flags an existing reminder as delivered. Unknown event ids
// are a no-op.
func (s *reminderService) MarkAsNotified(ctx context.Context, eventID, userID string) (models.SyncResult, error) {
	found := false
	err := s.modify(ctx, func(r models.Reminders) bool {
		rem, ok := r[eventID]
		if !ok {
			return false
		}
		rem.Notified = true
		r[eventID] = rem
		found = true
		return true
	})
	if err != nil {
		return models.Failed, fmt.Errorf("mark reminder: %w", err)
	}
	if !found {
		return models.Applied, nil
	}

	return s.remote(ctx, userID, "update", func() error {
		return s.store.Update(ctx, common.TableReminders, rowstore.Row{"notified": true},
			rowstore.Eq("user_id", userID), rowstore.Eq("event_id", eventID))
	}), nil
}

// SyncWithServer replaces the local reminders with the user's remote set.
// On a failed pull local state is left alone.
func (s *reminderService) SyncWithServer(ctx context.Context, userID string) error {
	rows, err := s.store.Select(ctx, common.TableReminders, rowstore.Query{
		Where: []rowstore.Cond{rowstore.Eq("user_id", userID)},
	})
	if err != nil {
		s.logger.Warn(ctx, "reminder pull failed", "err", err)
		return fmt.Errorf("pull reminders: %w", err)
	}

	r := make(models.Reminders, len(rows))
	for _, row := range rows {
		id, rem, err := models.ReminderFromRow(row)
		if err != nil {
			s.logger.Warn(ctx, "skipping reminder row", "event_id", row.String("event_id"), "err", err)
			continue
		}
		r[id] = rem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, r)
}

// CleanupOldReminders drops reminders that were delivered and whose time is
// more than seven days ago. Undelivered reminders are kept however old.
func (s *reminderService) CleanupOldReminders(ctx context.Context, userID string) (models.SyncResult, error) {
	cutoff := s.now().Add(-reminderRetention)

	err := s.modify(ctx, func(r models.Reminders) bool {
		before := len(r)
		maps.DeleteFunc(r, func(_ string, rem models.Reminder) bool {
			return rem.Notified && rem.Time.Before(cutoff)
		})
		return len(r) != before
	})
	if err != nil {
		return models.Failed, fmt.Errorf("cleanup reminders: %w", err)
	}

	return s.remote(ctx, userID, "cleanup", func() error {
		return s.store.Delete(ctx, common.TableReminders,
			rowstore.Eq("user_id", userID),
			rowstore.Eq("notified", true),
			rowstore.Lt("event_time", timex.FormatTimestamp(cutoff)))
	}), nil
}

// SendNotification shows a notification if permission is granted and
// reports whether it was shown.
func (s *reminderService) SendNotification(ctx context.Context, title string, opts notify.Options) bool {
	if !s.notifier.Supported() || s.notifier.Permission() != models.PermissionGranted {
		return false
	}
	if opts.Icon == "" {
		opts.Icon = notify.DefaultIcon
	}
	opts.RequireInteraction = true

	if err := s.notifier.Show(ctx, title, opts); err != nil {
		s.logger.Error(ctx, "notification failed", "title", title, "err", err)
		return false
	}
	return true
}

// Acknowledge confirms a freshly set reminder to the user.
func (s *reminderService) Acknowledge(ctx context.Context, eventID, title string, at time.Time) bool {
	return s.SendNotification(ctx, "Reminder Set: "+title, notify.Options{
		Body: fmt.Sprintf("We'll alert you before this event starts on %s.", monthDay(at)),
		Tag:  "ack-" + eventID,
	})
}

// DispatchDue notifies every undelivered reminder whose time is within the
// lead time, marks it delivered and returns how many fired.
func (s *reminderService) DispatchDue(ctx context.Context, userID string, titleOf func(eventID string) string) int {
	horizon := s.now().Add(s.lead)

	fired := 0
	for id, rem := range s.GetReminders(ctx) {
		if rem.Notified || rem.Time.After(horizon) {
			continue
		}

		title := id
		if titleOf != nil {
			if t := titleOf(id); t != "" {
				title = t
			}
		}
		ok := s.SendNotification(ctx, title, notify.Options{
			Body: "Starts " + rem.Time.Local().Format("Mon Jan 2, 3:04 PM"),
			Tag:  "due-" + id,
		})
		if !ok {
			continue
		}
		if _, err := s.MarkAsNotified(ctx, id, userID); err != nil {
			s.logger.Warn(ctx, "reminder fired but not marked", "event_id", id, "err", err)
		}
		fired++
	}
	return fired
}

// monthDay formats t as "March 1st".
func monthDay(t time.Time) string {
	d := t.Day()
	suffix := "th"
	switch {
	case d%100 >= 11 && d%100 <= 13:
	case d%10 == 1:
		suffix = "st"
	case d%10 == 2:
		suffix = "nd"
	case d%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%s %d%s", t.Month(), d, suffix)
}
