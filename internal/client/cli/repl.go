package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn prints user-facing REPL output; tests replace it.
var printlnFn = fmt.Println

var errUnknownCommand = errors.New("unknown command")

// execIface is what the REPL drives. *App implements it.
type execIface interface {
	Help() string
	Exec(ctx context.Context, cmd string, args []string) error
}

// splitArgs splits a command line on spaces. Double quotes group words,
// so `poster 1a2b "spring fair.png"` yields three fields.
func splitArgs(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
		inWord bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case (r == ' ' || r == '\t') && !quoted:
			if inWord {
				fields = append(fields, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		fields = append(fields, cur.String())
	}
	return fields
}

// runREPL reads one command per line until EOF, "exit"/"quit" or ctx is
// done. A failing command prints its error and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn("cal " + statusFn() + "> ")

		line, err := readLine(reader)
		if err != nil {
			return
		}
		fields := splitArgs(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch cmd := fields[0]; cmd {
		case "help":
			printlnFn(a.Help())
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			if err := a.Exec(ctx, cmd, fields[1:]); errors.Is(err, errUnknownCommand) {
				printlnFn("Unknown command:", cmd)
			} else if err != nil {
				printlnFn("Error:", err)
			}
		}
	}
}
