package cli

import (
	"context"
	"fmt"
	"strings"
)

type command struct {
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

// commands lists the REPL commands in help order. help and exit are
// handled by the REPL itself.
var commands = []command{
	{"guest", "continue as a guest", (*App).cmdGuest},
	{"admin", "register an administrator (needs the master password)", (*App).cmdAdmin},
	{"login", "sign in as an existing administrator", (*App).cmdLogin},
	{"admins", "list administrators", (*App).cmdAdmins},
	{"whoami", "show the current session", (*App).cmdWhoami},
	{"logout", "end the current session", (*App).cmdLogout},
	{"events", "list events", (*App).cmdEvents},
	{"show <id>", "show event details", (*App).cmdShow},
	{"addevent", "create an event (admin)", (*App).cmdAddEvent},
	{"editevent <id>", "edit an event (admin)", (*App).cmdEditEvent},
	{"delevent <id>", "delete an event (admin)", (*App).cmdDeleteEvent},
	{"poster <id> <file>", "upload an event poster (admin)", (*App).cmdPoster},
	{"qr <id>", "save the event's RSVP QR code as PNG", (*App).cmdQR},
	{"remind <id>", "set a reminder for an event", (*App).cmdRemind},
	{"unremind <id>", "remove a reminder", (*App).cmdUnremind},
	{"reminders", "list your reminders", (*App).cmdReminders},
	{"sync", "pull your reminders from the server", (*App).cmdSync},
	{"cleanup", "drop notified reminders older than a week", (*App).cmdCleanup},
	{"audit", "show the audit log (admin)", (*App).cmdAudit},
	{"users", "show the number of registered guests", (*App).cmdUsers},
	{"notify-test", "send a test notification", (*App).cmdNotifyTest},
}

func commandName(usage string) string {
	name, _, _ := strings.Cut(usage, " ")
	return name
}

func (a *App) Help() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-20s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(&b, "  %-20s %s\n", "help", "show this help")
	fmt.Fprintf(&b, "  %-20s %s", "exit", "quit")
	return b.String()
}

func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	for _, c := range commands {
		if commandName(c.usage) == cmd {
			return c.run(a, ctx, args)
		}
	}
	return errUnknownCommand
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
