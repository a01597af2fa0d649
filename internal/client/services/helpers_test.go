package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/notify"
	"github.com/dmitrijs2005/cal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/dmitrijs2005/cal/internal/rowstore"
)

var (
	errRemoteDown = errors.New("remote down")
	errDiskFull   = errors.New("disk full")
	fixedNow      = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func newAuth(t *testing.T) (*authService, *rowstore.Memory, *metadata.Memory) {
	t.Helper()
	store := rowstore.NewMemory(rowstore.DefaultSchema)
	local := metadata.NewMemory()
	a := NewAuthService(store, local, logging.Nop()).(*authService)
	a.now = func() time.Time { return fixedNow }
	return a, store, local
}

// failFor makes the memory store fail op on table.
func failFor(op, table string) func(string, string) error {
	return func(o, tb string) error {
		if o == op && tb == table {
			return errRemoteDown
		}
		return nil
	}
}

// brokenLocal is a local store whose writes fail.
type brokenLocal struct {
	*metadata.Memory
}

func newBrokenLocal() brokenLocal { return brokenLocal{Memory: metadata.NewMemory()} }

func (brokenLocal) Set(context.Context, string, []byte) error       { return errDiskFull }
func (brokenLocal) SetMany(context.Context, map[string][]byte) error { return errDiskFull }

type fakeNotifier struct {
	supported bool
	answer    models.Permission
	state     models.Permission
	askErr    error
	showErr   error
	shown     []shown
}

type shown struct {
	title string
	opts  notify.Options
}

func newFakeNotifier(answer models.Permission) *fakeNotifier {
	return &fakeNotifier{supported: true, answer: answer, state: models.PermissionDefault}
}

func (f *fakeNotifier) Supported() bool { return f.supported }

func (f *fakeNotifier) RequestPermission(context.Context) (models.Permission, error) {
	if f.askErr != nil {
		return models.PermissionDenied, f.askErr
	}
	f.state = f.answer
	return f.state, nil
}

func (f *fakeNotifier) Permission() models.Permission { return f.state }

func (f *fakeNotifier) Restore(p models.Permission) { f.state = p }

func (f *fakeNotifier) Show(_ context.Context, title string, opts notify.Options) error {
	if f.showErr != nil {
		return f.showErr
	}
	f.shown = append(f.shown, shown{title: title, opts: opts})
	return nil
}

func newReminders(t *testing.T, n notify.Notifier) (*reminderService, *rowstore.Memory, *metadata.Memory) {
	t.Helper()
	store := rowstore.NewMemory(rowstore.DefaultSchema)
	local := metadata.NewMemory()
	s := NewReminderService(store, local, n, 15*time.Minute, logging.Nop()).(*reminderService)
	s.now = func() time.Time { return fixedNow }
	return s, store, local
}
