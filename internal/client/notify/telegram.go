package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Sender is the part of *bot.Bot the notifier needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

const probeText = "Calendar reminders will be delivered to this chat."

// Telegram delivers notifications as chat messages. Permission is granted
// once a probe message reaches the chat.
type Telegram struct {
	mu     sync.Mutex
	sender Sender
	chatID int64
	state  models.Permission
}

func NewTelegram(sender Sender, chatID int64) *Telegram {
	return &Telegram{sender: sender, chatID: chatID, state: models.PermissionDefault}
}

// NewTelegramBot builds a Telegram notifier from a bot token.
func NewTelegramBot(token string, chatID int64) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram token and chat id are required")
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	return NewTelegram(b, chatID), nil
}

func (t *Telegram) Supported() bool { return t.sender != nil && t.chatID != 0 }

func (t *Telegram) RequestPermission(ctx context.Context) (models.Permission, error) {
	if !t.Supported() {
		return models.PermissionUnsupported, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == models.PermissionGranted {
		return t.state, nil
	}
	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: t.chatID, Text: probeText})
	if err != nil {
		t.state = models.PermissionDenied
		return t.state, err
	}
	t.state = models.PermissionGranted
	return t.state, nil
}

func (t *Telegram) Permission() models.Permission {
	if !t.Supported() {
		return models.PermissionUnsupported
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Restore sets the state remembered from a previous run.
func (t *Telegram) Restore(p models.Permission) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == models.PermissionGranted || p == models.PermissionDenied {
		t.state = p
	}
}

func (t *Telegram) Show(ctx context.Context, title string, opts Options) error {
	if t.Permission() != models.PermissionGranted {
		return ErrNotPermitted
	}
	text := title
	if opts.Body != "" {
		text += "\n" + opts.Body
	}
	_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:              t.chatID,
		Text:                text,
		DisableNotification: !opts.RequireInteraction,
	})
	return err
}
