package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide structured logger.
type Options struct {
	Service string
	Env     string
	Level   string
	// File, when set, receives a rotated copy of every record.
	File string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a JSON slog logger, installs it as the default and returns a
// closer for the rotating file sink, if any.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	l := NewWithWriter(out, opts)
	slog.SetDefault(l)
	return l, closer
}

// NewWithWriter builds the logger on an arbitrary writer without touching the default.
func NewWithWriter(w io.Writer, opts Options) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(h).With(
		slog.String("service", opts.Service),
		slog.String("env", opts.Env),
	)
}

// ParseLevel maps a textual level to slog, defaulting to info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
