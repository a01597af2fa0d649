package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cal/internal/client/client"
	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cal/internal/common"
	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/dmitrijs2005/cal/internal/netx"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
	"github.com/skip2/go-qrcode"
)

const (
	ActionEventCreated   = "Event Created"
	ActionEventUpdated   = "Event Updated"
	ActionEventDeleted   = "Event Deleted"
	ActionPosterUploaded = "Poster Uploaded"
)

// PosterPresigner issues presigned poster uploads.
type PosterPresigner interface {
	PresignPoster(ctx context.Context, filename string) (*client.PosterUpload, error)
}

// EventService is the event catalogue. Mutations require an administrator
// and are written to the audit trail.
type EventService interface {
	// List returns all events ordered by date. When the server cannot be
	// reached the last cached list is returned with stale set.
	List(ctx context.Context) (events []models.Event, stale bool, err error)
	Get(ctx context.Context, id string) (models.Event, error)
	Create(ctx context.Context, actor models.Identity, ev models.Event) (models.Event, error)
	Update(ctx context.Context, actor models.Identity, ev models.Event) (models.Event, error)
	Delete(ctx context.Context, actor models.Identity, id string) error
	RSVPQRCode(ev models.Event, size int) ([]byte, error)
	AttachPoster(ctx context.Context, actor models.Identity, eventID, filename string, data []byte) (models.Event, error)
}

type eventService struct {
	store   rowstore.Store
	local   metadata.Repository
	posters PosterPresigner
	auth    AuthService
	logger  logging.Logger
	upload  func(ctx context.Context, url, contentType string, data []byte) error
	now     func() time.Time
}

func NewEventService(store rowstore.Store, local metadata.Repository, posters PosterPresigner, auth AuthService, logger logging.Logger) EventService {
	return &eventService{
		store:   store,
		local:   local,
		posters: posters,
		auth:    auth,
		logger:  logger.With("service", "events"),
		upload:  netx.UploadToS3PresignedURL,
		now:     time.Now,
	}
}

func requireAdmin(actor models.Identity) (models.Admin, error) {
	admin, ok := actor.(models.Admin)
	if !ok {
		return models.Admin{}, fmt.Errorf("%w: administrator required", common.ErrorForbidden)
	}
	return admin, nil
}

func (s *eventService) List(ctx context.Context) ([]models.Event, bool, error) {
	rows, err := s.store.Select(ctx, common.TableEvents, rowstore.Query{OrderBy: "date"})
	if err != nil {
		if errors.Is(err, rowstore.ErrTableMissing) {
			return []models.Event{}, false, nil
		}
		s.logger.Warn(ctx, "event listing failed, using cache", "err", err)
		cached, ok := s.cached(ctx)
		if !ok {
			return nil, false, fmt.Errorf("list events: %w", err)
		}
		return cached, true, nil
	}

	events := make([]models.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, models.EventFromRow(r))
	}
	sortEvents(events)

	if data, err := json.Marshal(events); err == nil {
		if err := s.local.Set(ctx, KeyEventsCache, data); err != nil {
			s.logger.Warn(ctx, "event cache not written", "err", err)
		}
	}
	return events, false, nil
}

func (s *eventService) cached(ctx context.Context) ([]models.Event, bool) {
	data, err := s.local.Get(ctx, KeyEventsCache)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		s.logger.Warn(ctx, "event cache corrupt", "err", err)
		return nil, false
	}
	return events, true
}

func (s *eventService) Get(ctx context.Context, id string) (models.Event, error) {
	row, err := rowstore.First(ctx, s.store, common.TableEvents, rowstore.Eq("id", id))
	if err != nil {
		if cached, ok := s.cached(ctx); ok {
			for _, ev := range cached {
				if ev.ID == id {
					return ev, nil
				}
			}
		}
		return models.Event{}, fmt.Errorf("get event: %w", err)
	}
	if row == nil {
		return models.Event{}, fmt.Errorf("event %s: %w", id, common.ErrorNotFound)
	}
	return models.EventFromRow(row), nil
}

func (s *eventService) Create(ctx context.Context, actor models.Identity, ev models.Event) (models.Event, error) {
	admin, err := requireAdmin(actor)
	if err != nil {
		return models.Event{}, err
	}
	if err := ev.Validate(); err != nil {
		return models.Event{}, err
	}

	ev.CreatedBy = admin.ID
	row := ev.Row()
	row["updated_at"] = timex.FormatTimestamp(s.now())

	stored, err := s.store.Insert(ctx, common.TableEvents, row)
	if err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}

	created := models.EventFromRow(stored)
	_ = s.auth.LogAction(ctx, admin, ActionEventCreated, fmt.Sprintf("Created %q on %s", created.Title, created.Date))
	return created, nil
}

func (s *eventService) Update(ctx context.Context, actor models.Identity, ev models.Event) (models.Event, error) {
	admin, err := requireAdmin(actor)
	if err != nil {
		return models.Event{}, err
	}
	if ev.ID == "" {
		return models.Event{}, fmt.Errorf("%w: event id is required", common.ErrorValidation)
	}
	if err := ev.Validate(); err != nil {
		return models.Event{}, err
	}

	patch := ev.Row()
	delete(patch, "created_by")
	patch["updated_at"] = timex.FormatTimestamp(s.now())

	if err := s.store.Update(ctx, common.TableEvents, patch, rowstore.Eq("id", ev.ID)); err != nil {
		return models.Event{}, fmt.Errorf("update event: %w", err)
	}

	updated, err := s.Get(ctx, ev.ID)
	if err != nil {
		return models.Event{}, err
	}
	_ = s.auth.LogAction(ctx, admin, ActionEventUpdated, fmt.Sprintf("Updated %q", updated.Title))
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, actor models.Identity, id string) error {
	admin, err := requireAdmin(actor)
	if err != nil {
		return err
	}

	ev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, common.TableEvents, rowstore.Eq("id", id)); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	_ = s.auth.LogAction(ctx, admin, ActionEventDeleted, fmt.Sprintf("Deleted %q", ev.Title))
	return nil
}

// RSVPQRCode renders the event's RSVP link as a PNG QR code.
func (s *eventService) RSVPQRCode(ev models.Event, size int) ([]byte, error) {
	if strings.TrimSpace(ev.RSVPLink) == "" {
		return nil, fmt.Errorf("%w: event has no RSVP link", common.ErrorValidation)
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(ev.RSVPLink, qrcode.Medium, size)
}

// AttachPoster uploads data through a presigned URL and points the event's
// poster at the uploaded object.
func (s *eventService) AttachPoster(ctx context.Context, actor models.Identity, eventID, filename string, data []byte) (models.Event, error) {
	admin, err := requireAdmin(actor)
	if err != nil {
		return models.Event{}, err
	}
	if len(data) == 0 {
		return models.Event{}, fmt.Errorf("%w: poster is empty", common.ErrorValidation)
	}
	if _, err := s.Get(ctx, eventID); err != nil {
		return models.Event{}, err
	}

	up, err := s.posters.PresignPoster(ctx, filename)
	if err != nil {
		return models.Event{}, fmt.Errorf("presign poster: %w", err)
	}
	if err := s.upload(ctx, up.UploadURL, mime.TypeByExtension(filepath.Ext(filename)), data); err != nil {
		return models.Event{}, fmt.Errorf("upload poster: %w", err)
	}

	err = s.store.Update(ctx, common.TableEvents, rowstore.Row{
		"poster_url": up.PublicURL,
		"updated_at": timex.FormatTimestamp(s.now()),
	}, rowstore.Eq("id", eventID))
	if err != nil {
		return models.Event{}, fmt.Errorf("set poster: %w", err)
	}

	ev, err := s.Get(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}
	_ = s.auth.LogAction(ctx, admin, ActionPosterUploaded, fmt.Sprintf("Poster for %q stored as %s", ev.Title, up.Key))
	return ev, nil
}

// sortEvents orders by date then start time; all-day events come first.
func sortEvents(events []models.Event) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
}

// FormatTime renders "HH:mm" as a 12-hour clock, "18:30" -> "6:30 PM".
// Empty or malformed input yields "".
func FormatTime(hhmm string) string {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return ""
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return ""
	}
	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	display := hours % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, m, ampm)
}
