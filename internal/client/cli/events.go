package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/services"
	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/filex"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// resolveEvent finds the event whose id starts with prefix.
func (a *App) resolveEvent(ctx context.Context, prefix string) (models.Event, error) {
	events, _, err := a.events.List(ctx)
	if err != nil {
		return models.Event{}, err
	}

	var found []models.Event
	for _, ev := range events {
		if ev.ID == prefix {
			return ev, nil
		}
		if strings.HasPrefix(ev.ID, prefix) {
			found = append(found, ev)
		}
	}
	switch len(found) {
	case 0:
		return models.Event{}, fmt.Errorf("event %q: %w", prefix, common.ErrorNotFound)
	case 1:
		return found[0], nil
	}
	return models.Event{}, fmt.Errorf("%w: id %q matches %d events", common.ErrorValidation, prefix, len(found))
}

func timeRange(ev models.Event) string {
	switch {
	case ev.StartTime == "":
		return "all day"
	case ev.EndTime == "":
		return services.FormatTime(ev.StartTime)
	}
	return services.FormatTime(ev.StartTime) + " - " + services.FormatTime(ev.EndTime)
}

func (a *App) cmdEvents(ctx context.Context, _ []string) error {
	events, stale, err := a.events.List(ctx)
	if err != nil {
		return err
	}
	if stale {
		fmt.Fprintln(a.out, "Server unreachable: showing cached events.")
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events.")
		return nil
	}

	reminders := a.reminders.GetReminders(ctx)
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tTITLE\tCATEGORY\tREMINDER")
	for _, ev := range events {
		mark := ""
		if _, ok := reminders[ev.ID]; ok {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", shortID(ev.ID), ev.Date, timeRange(ev), ev.Title, ev.Category, mark)
	}
	return tw.Flush()
}

func (a *App) cmdShow(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "show <id>"); err != nil {
		return err
	}
	ev, err := a.resolveEvent(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n%s, %s\n", ev.Title, ev.Date, timeRange(ev))
	fmt.Fprintf(a.out, "Category: %s (%s)\n", ev.Category, ev.Color)
	if ev.Location != "" {
		fmt.Fprintf(a.out, "Location: %s\n", ev.Location)
	}
	if ev.RSVPLink != "" {
		fmt.Fprintf(a.out, "RSVP:     %s\n", ev.RSVPLink)
	}
	if ev.PosterURL != "" {
		fmt.Fprintf(a.out, "Poster:   %s\n", ev.PosterURL)
	}
	if a.reminders.HasReminder(ctx, ev.ID) {
		fmt.Fprintln(a.out, "Reminder: set")
	}
	if ev.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", ev.Description)
	}
	return nil
}

// promptEvent asks for every editable field, offering ev's values as
// defaults.
func (a *App) promptEvent(ev models.Event) (models.Event, error) {
	var err error
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Title", &ev.Title},
		{"Date (YYYY-MM-DD)", &ev.Date},
		{"Start time (HH:mm, optional)", &ev.StartTime},
		{"End time (HH:mm, optional)", &ev.EndTime},
		{"Location", &ev.Location},
		{"RSVP link", &ev.RSVPLink},
	}
	for _, f := range fields {
		if *f.dst, err = GetTextDefault(a.reader, f.prompt, *f.dst, a.out); err != nil {
			return ev, err
		}
	}

	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	cat, err := GetTextDefault(a.reader, "Category ("+strings.Join(names, ", ")+")", string(ev.Category), a.out)
	if err != nil {
		return ev, err
	}
	if ev.Category, err = models.ParseCategory(cat); err != nil {
		return ev, err
	}

	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return ev, err
	}
	if desc != "" {
		ev.Description = desc
	}
	return ev, nil
}

func (a *App) cmdAddEvent(ctx context.Context, _ []string) error {
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}
	ev, err := a.promptEvent(models.Event{Category: models.CategoryOther})
	if err != nil {
		return err
	}
	ev, err = a.events.Create(ctx, id, ev)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Event %s created.\n", shortID(ev.ID))
	return nil
}

func (a *App) cmdEditEvent(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "editevent <id>"); err != nil {
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
	if ev, err = a.promptEvent(ev); err != nil {
		return err
	}
	if _, err = a.events.Update(ctx, id, ev); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Event %s updated.\n", shortID(ev.ID))
	return nil
}

func (a *App) cmdDeleteEvent(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "delevent <id>"); err != nil {
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
	if !Confirm(a.reader, fmt.Sprintf("Delete %q?", ev.Title), a.out) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.events.Delete(ctx, id, ev.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Event deleted.")
	return nil
}

func (a *App) cmdPoster(ctx context.Context, args []string) error {
	if err := needArgs(args, 2, "poster <id> <file>"); err != nil {
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
	data, err := a.readFile(args[1])
	if err != nil {
		return err
	}
	ev, err = a.events.AttachPoster(ctx, id, ev.ID, filepath.Base(args[1]), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Poster uploaded: %s\n", ev.PosterURL)
	return nil
}

func (a *App) cmdQR(ctx context.Context, args []string) error {
	if err := needArgs(args, 1, "qr <id>"); err != nil {
		return err
	}
	ev, err := a.resolveEvent(ctx, args[0])
	if err != nil {
		return err
	}
	png, err := a.events.RSVPQRCode(ev, 256)
	if err != nil {
		return err
	}
	path, err := filex.WriteInto(a.config.OutputDir, "rsvp-"+shortID(ev.ID)+".png", png)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "QR code saved to %s\n", path)
	return nil
}
