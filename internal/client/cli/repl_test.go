package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	fail  map[string]error
}

func (f *fakeExec) Help() string { return "help text" }

func (f *fakeExec) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "guest", "events", "show", "remind", "sync", "logout", "broken":
		f.calls = append(f.calls, strings.TrimSpace(cmd+" "+strings.Join(args, " ")))
		return f.fail[cmd]
	}
	return errUnknownCommand
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		printed = append(printed, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &printed
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	printed := capturePrints(t)

	input := strings.Join([]string{
		"help",
		"guest",
		"",
		"events all",
		"show 1a2b",
		"remind 1a2b",
		"foobar",
		"broken",
		"sync",
		"exit",
		"logout",
	}, "\n")

	exec := &fakeExec{fail: map[string]error{"broken": errors.New("kaput")}}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	assert.Equal(t, []string{"guest", "events all", "show 1a2b", "remind 1a2b", "broken", "sync"}, exec.calls)
	assert.Contains(t, *printed, "help text")
	assert.Contains(t, *printed, "Unknown command: foobar")
	assert.Contains(t, *printed, "Error: kaput")
	assert.Contains(t, *printed, "Bye!")
	assert.Contains(t, *printed, "cal status>")
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("sync"))
	assert.Equal(t, []string{"sync"}, exec.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec = &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, rdr("sync\n"))
	assert.Empty(t, exec.calls)
}

func TestSplitArgs(t *testing.T) {
	for in, want := range map[string][]string{
		"":                              nil,
		"events":                        {"events"},
		"show   1a2b ":                  {"show", "1a2b"},
		`poster 1a2b "spring fair.png"`: {"poster", "1a2b", "spring fair.png"},
		"poster\t1a2b\t/tmp/flyer.png":  {"poster", "1a2b", "/tmp/flyer.png"},
		`qr ""`:                         {"qr", ""},
	} {
		assert.Equal(t, want, splitArgs(in), "splitArgs(%q)", in)
	}
}
