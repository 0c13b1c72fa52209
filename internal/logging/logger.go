// Package logging provides the zerolog-backed logger used across the tutor.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Console styles accepted by NewWithStyle.
const (
	StylePretty = "pretty"
	StyleJSON   = "json"
)

// Logger is a zerolog logger scoped by subsystem and fields.
type Logger struct {
	zl zerolog.Logger
}

// New creates a root logger writing to w at the given level. A nil w means
// human-readable console output on stderr.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewWithStyle creates a root logger on stderr. StyleJSON emits one JSON
// object per line for log collectors; anything else is the console writer.
func NewWithStyle(style, level string) *Logger {
	if strings.EqualFold(style, StyleJSON) {
		return New(os.Stderr, level)
	}
	return New(nil, level)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return l.With("subsystem", subsystem)
}

// With returns a child logger carrying key=value on every event.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// StdLogger adapts the logger for APIs that want a *log.Logger, such as
// http.Server.ErrorLog. Each line becomes one event at level.
func (l *Logger) StdLogger(level string) *stdlog.Logger {
	return stdlog.New(levelWriter{zl: l.zl, level: ParseLevel(level)}, "", 0)
}

type levelWriter struct {
	zl    zerolog.Logger
	level zerolog.Level
}

func (w levelWriter) Write(p []byte) (int, error) {
	w.zl.WithLevel(w.level).Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// ParseLevel maps a level name to zerolog. Names are case-insensitive;
// unknown names fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "silent", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
