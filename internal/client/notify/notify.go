// Package notify provides the notification primitives reminders are
// delivered through: a terminal notifier for the interactive CLI and a
// Telegram notifier for delivery to a phone.
package notify

import (
	"context"

	"github.com/dmitrijs2005/cal/internal/client/models"
)

// DefaultIcon is attached to every notification that does not set one.
const DefaultIcon = "https://cdn-icons-png.flaticon.com/512/3652/3652191.png"

// Options tune a single notification.
type Options struct {
	Body               string
	Tag                string
	Icon               string
	RequireInteraction bool
}

// Notifier is a native notification primitive.
type Notifier interface {
	// Supported reports whether the notifier can deliver at all.
	Supported() bool
	// RequestPermission asks for permission and returns the resulting state.
	RequestPermission(ctx context.Context) (models.Permission, error)
	// Permission returns the current state without asking.
	Permission() models.Permission
	// Show delivers a notification. Delivery is fire-and-forget.
	Show(ctx context.Context, title string, opts Options) error
}

// Unsupported is a Notifier for environments without notifications.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) RequestPermission(context.Context) (models.Permission, error) {
	return models.PermissionUnsupported, nil
}

func (Unsupported) Permission() models.Permission { return models.PermissionUnsupported }

func (Unsupported) Show(context.Context, string, Options) error { return ErrUnsupported }
