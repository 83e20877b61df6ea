package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name into a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off", "none":
		return LevelSilent, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", name)
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		// above every level slog emits
		return slog.LevelError + 100
	}
}

// Logger is a structured, leveled logger. Args are key/value pairs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// Options configures the package logger.
type Options struct {
	Level  Level
	Format string // "text" or "json"
	Output io.Writer
}

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	root  *slog.Logger
)

func init() {
	level.Set(LevelWarn.slogLevel())
	root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Configure replaces the root handler. Loggers obtained earlier keep the old
// handler, so call this before building components.
func Configure(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level.Set(opts.Level.slogLevel())

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	mu.Lock()
	root = slog.New(handler)
	mu.Unlock()
}

// SetLevel changes the level of every logger sharing the root handler.
func SetLevel(l Level) {
	level.Set(l.slogLevel())
}

// Enabled reports whether messages at l would be written.
func Enabled(l Level) bool {
	return l != LevelSilent && level.Level() <= l.slogLevel()
}

func base() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Debug(msg string, args ...interface{}) {
	s.l.Log(context.Background(), slog.LevelDebug, msg, args...)
}

func (s slogLogger) Info(msg string, args ...interface{}) {
	s.l.Log(context.Background(), slog.LevelInfo, msg, args...)
}

func (s slogLogger) Warn(msg string, args ...interface{}) {
	s.l.Log(context.Background(), slog.LevelWarn, msg, args...)
}

func (s slogLogger) Error(msg string, args ...interface{}) {
	s.l.Log(context.Background(), slog.LevelError, msg, args...)
}

func (s slogLogger) WithField(key string, value interface{}) Logger {
	return slogLogger{l: s.l.With(key, value)}
}

func (s slogLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return slogLogger{l: s.l.With(args...)}
}

// WithField returns a root logger carrying one extra attribute.
func WithField(key string, value interface{}) Logger {
	return slogLogger{l: base()}.WithField(key, value)
}
