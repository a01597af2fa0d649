package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/notify"
	"github.com/dmitrijs2005/cal/internal/common"
)

func (a *App) reportSync(res models.SyncResult, done string) {
	switch res {
	case models.Applied:
		fmt.Fprintln(a.out, done)
	case models.AppliedLocalOnly:
		fmt.Fprintln(a.out, done, "(saved on this device only, server unreachable)")
	}
}

// ensurePermission asks for notification permission unless it was
// already granted.
func (a *App) ensurePermission(ctx context.Context) bool {
	if a.reminders.PermissionStatus() == models.PermissionGranted {
		return true
	}
	return a.reminders.RequestPermission(ctx)
}

func (a *App) cmdRemind(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "remind <id>"); err != nil {
		return err
	}
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}
	ev, err := a.resolveEvent(ctx, args[0])
	if err != nil {
		return err
	}
	at, err := ev.StartsAt(time.Local)
	if err != nil {
		return err
	}

	if !a.ensurePermission(ctx) {
		fmt.Fprintln(a.out, "Notifications are not allowed. Enable them to get reminders.")
		return nil
	}

	res, err := a.reminders.AddReminder(ctx, ev.ID, at, id.Info().ID)
	if err != nil {
		return err
	}
	a.reportSync(res, "Reminder set.")
	a.reminders.Acknowledge(ctx, ev.ID, ev.Title, at)
	return nil
}

// reminderKey maps a user-typed id or prefix to a reminder key. Event ids
// are tried first; reminders whose event is gone are matched by key.
func (a *App) reminderKey(ctx context.Context, prefix string) (string, error) {
	ev, err := a.resolveEvent(ctx, prefix)
	switch {
	case err == nil:
		return ev.ID, nil
	case errors.Is(err, common.ErrorValidation):
		return "", err
	}

	var found []string
	for k := range a.reminders.GetReminders(ctx) {
		if k == prefix {
			return k, nil
		}
		if strings.HasPrefix(k, prefix) {
			found = append(found, k)
		}
	}
	switch len(found) {
	case 0:
		return prefix, nil
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%w: id %q matches %d reminders", common.ErrorValidation, prefix, len(found))
}

func (a *App) cmdUnremind(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "unremind <id>"); err != nil {
		return err
	}
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}

	eventID, err := a.reminderKey(ctx, args[0])
	if err != nil {
		return err
	}

	res, err := a.reminders.RemoveReminder(ctx, eventID, id.Info().ID)
	if err != nil {
		return err
	}
	a.reportSync(res, "Reminder removed.")
	return nil
}

func (a *App) cmdReminders(ctx context.Context, _ []string) error {
	reminders := a.reminders.GetReminders(ctx)
	if len(reminders) == 0 {
		fmt.Fprintln(a.out, "No reminders.")
		return nil
	}

	titles := map[string]string{}
	if events, _, err := a.events.List(ctx); err == nil {
		for _, ev := range events {
			titles[ev.ID] = ev.Title
		}
	}

	ids := make([]string, 0, len(reminders))
	for k := range reminders {
		ids = append(ids, k)
	}
	slices.SortFunc(ids, func(x, y string) int {
		return reminders[x].Time.Compare(reminders[y].Time)
	})

	for _, k := range ids {
		r := reminders[k]
		state := "pending"
		if r.Notified {
			state = "notified"
		}
		title := titles[k]
		if title == "" {
			title = "(unknown event)"
		}
		fmt.Fprintf(a.out, "%s  %s  %-8s %s\n", shortID(k), r.Time.Local().Format("2006-01-02 15:04"), state, title)
	}
	return nil
}

func (a *App) cmdSync(ctx context.Context, _ []string) error {
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}
	if err := a.reminders.SyncWithServer(ctx, id.Info().ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Synced %d reminders from the server.\n", len(a.reminders.GetReminders(ctx)))
	return nil
}

func (a *App) cmdCleanup(ctx context.Context, _ []string) error {
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}
	res, err := a.reminders.CleanupOldReminders(ctx, id.Info().ID)
	if err != nil {
		return err
	}
	a.reportSync(res, "Old reminders cleaned up.")
	return nil
}

func (a *App) cmdNotifyTest(ctx context.Context, _ []string) error {
	if !a.ensurePermission(ctx) {
		return fmt.Errorf("notifications are %s", a.reminders.PermissionStatus())
	}
	if !a.reminders.SendNotification(ctx, "Test notification", notify.Options{Body: "Notifications are working."}) {
		return fmt.Errorf("notification could not be shown")
	}
	return nil
}
