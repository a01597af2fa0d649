package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/cal/internal/client/models"
)

// Terminal prints notifications to a writer. Permission is asked through
// confirm, typically a y/n prompt.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	confirm func(prompt string) bool
	state   models.Permission
}

func NewTerminal(out io.Writer, confirm func(prompt string) bool) *Terminal {
	return &Terminal{out: out, confirm: confirm, state: models.PermissionDefault}
}

func (t *Terminal) Supported() bool { return t.out != nil }

func (t *Terminal) RequestPermission(ctx context.Context) (models.Permission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == models.PermissionGranted {
		return t.state, nil
	}
	if t.confirm != nil && t.confirm("Allow event reminders in this terminal?") {
		t.state = models.PermissionGranted
	} else {
		t.state = models.PermissionDenied
	}
	return t.state, nil
}

func (t *Terminal) Permission() models.Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Restore sets the state remembered from a previous run.
func (t *Terminal) Restore(p models.Permission) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == models.PermissionGranted || p == models.PermissionDenied {
		t.state = p
	}
}

func (t *Terminal) Show(ctx context.Context, title string, opts Options) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != models.PermissionGranted {
		return ErrNotPermitted
	}

	bell := ""
	if opts.RequireInteraction {
		bell = "\a"
	}
	if _, err := fmt.Fprintf(t.out, "%s🔔 %s\n", bell, title); err != nil {
		return err
	}
	if opts.Body != "" {
		if _, err := fmt.Fprintf(t.out, "   %s\n", opts.Body); err != nil {
			return err
		}
	}
	return nil
}
