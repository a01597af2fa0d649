package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog to Logger. It is used by the CLI, where a
// human-readable console writer is nicer than JSON lines.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// NewConsoleLogger builds a ZerologLogger writing colourless console output to w
// at the given minimum level.
func NewConsoleLogger(w io.Writer, level zerolog.Level) *ZerologLogger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.Kitchen}
	return NewZerologLogger(zerolog.New(cw).Level(level).With().Timestamp().Logger())
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Debug(), ctx, args).Msg(msg)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Info(), ctx, args).Msg(msg)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Warn(), ctx, args).Msg(msg)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Error(), ctx, args).Msg(msg)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for k, v := range pairs(args) {
		c = c.Interface(k, v)
	}
	return &ZerologLogger{l: c.Logger()}
}

func (z *ZerologLogger) event(e *zerolog.Event, ctx context.Context, args []any) *zerolog.Event {
	e = e.Ctx(ctx)
	for k, v := range pairs(args) {
		if err, ok := v.(error); ok {
			e = e.AnErr(k, err)
			continue
		}
		e = e.Interface(k, v)
	}
	return e
}

// pairs turns slog-style variadic key–value arguments into a map.
// A dangling value is stored under "!BADKEY", matching slog.
func pairs(args []any) map[string]any {
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i++ {
		k, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			m["!BADKEY"] = args[i]
			continue
		}
		m[k] = args[i+1]
		i++
	}
	return m
}

// String implements fmt.Stringer for debugging output in tests.
func (z *ZerologLogger) String() string {
	return fmt.Sprintf("zerolog(level=%s)", z.l.GetLevel())
}
