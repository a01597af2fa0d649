package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cal/internal/client/client"
	"github.com/dmitrijs2005/cal/internal/client/config"
	"github.com/dmitrijs2005/cal/internal/client/models"
	"github.com/dmitrijs2005/cal/internal/client/notify"
	"github.com/dmitrijs2005/cal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cal/internal/client/services"
	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/rs/zerolog"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pinger reports whether the server is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config    *config.Config
	auth      services.AuthService
	reminders services.ReminderService
	events    services.EventService
	remote    pinger
	logger    logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	readFile  func(name string) ([]byte, error)
	closers   []func() error

	mu       sync.RWMutex
	identity models.Identity
	mode     Mode
}

// deps are the collaborators of an App. NewApp builds the real ones.
type deps struct {
	store    client.Client
	local    metadata.Repository
	notifier notify.Notifier
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

func newApp(c *config.Config, d deps) *App {
	as := services.NewAuthService(d.store, d.local, d.logger)
	rs := services.NewReminderService(d.store, d.local, d.notifier, c.ReminderLeadTime, d.logger)
	es := services.NewEventService(d.store, d.local, d.store, as, d.logger)

	return &App{
		config:    c,
		auth:      as,
		reminders: rs,
		events:    es,
		remote:    d.store,
		logger:    d.logger,
		reader:    d.reader,
		out:       d.out,
		readFile:  os.ReadFile,
		mode:      ModeOffline,
	}
}

// NewApp opens the local database, connects to the server and wires the
// services. Notifications go to Telegram when a bot token and chat are
// configured, otherwise to the terminal.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = zerolog.WarnLevel
	}
	logger := logging.NewConsoleLogger(os.Stderr, level)

	repos, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.APIKey)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	reader := bufio.NewReader(os.Stdin)
	out := io.Writer(os.Stdout)

	var notifier notify.Notifier
	if c.TelegramToken != "" && c.TelegramChatID != 0 {
		notifier, err = notify.NewTelegramBot(c.TelegramToken, c.TelegramChatID)
		if err != nil {
			_ = apiClient.Close()
			_ = repos.Close()
			return nil, err
		}
	} else {
		notifier = notify.NewTerminal(out, func(prompt string) bool {
			return Confirm(reader, prompt, out)
		})
	}

	a := newApp(c, deps{
		store:    apiClient,
		local:    repos.Metadata,
		notifier: notifier,
		logger:   logger,
		reader:   reader,
		out:      out,
	})
	a.closers = append(a.closers, apiClient.Close, repos.Close)
	return a, nil
}

// Run restores the previous session, starts the background watchers and
// drives the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.restore(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.StartReminderWatcher(ctx, a.config.ReminderCheckInterval)

	fmt.Fprintln(a.out, "Community calendar. Type \"help\" for commands.")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "err", err)
		}
	}
	a.closers = nil
}

func (a *App) restore(ctx context.Context) {
	a.auth.InitMasterPassword(ctx)
	a.reminders.RestorePermission(ctx)

	id, ok := a.auth.GetCurrentSession(ctx)
	if !ok {
		return
	}
	a.setIdentity(id)
	fmt.Fprintf(a.out, "Welcome back, %s.\n", id.Info().Name)
}

func (a *App) setIdentity(id models.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = id
}

func (a *App) currentIdentity() models.Identity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

func (a *App) status() string {
	var b strings.Builder
	b.WriteString(string(a.Mode()))
	if id := a.currentIdentity(); id != nil {
		fmt.Fprintf(&b, " %s", id.Info().Name)
		if id.Role() == models.RoleAdmin {
			b.WriteString(" (admin)")
		}
	}
	return b.String()
}

// checkOnline pings the server once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.remote.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// dispatchReminders fires the current user's due reminders.
func (a *App) dispatchReminders(ctx context.Context) int {
	id := a.currentIdentity()
	if id == nil {
		return 0
	}

	titles := map[string]string{}
	if events, _, err := a.events.List(ctx); err == nil {
		for _, ev := range events {
			titles[ev.ID] = ev.Title
		}
	}

	return a.reminders.DispatchDue(ctx, id.Info().ID, func(eventID string) string {
		if t, ok := titles[eventID]; ok {
			return t
		}
		return "Upcoming event"
	})
}

func (a *App) StartReminderWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := a.dispatchReminders(ctx); n > 0 {
				a.logger.Info(ctx, "reminders dispatched", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

var errNotLoggedIn = errors.New("not logged in: use \"guest\", \"admin\" or \"login\"")

func (a *App) requireIdentity() (models.Identity, error) {
	id := a.currentIdentity()
	if id == nil {
		return nil, errNotLoggedIn
	}
	return id, nil
}
