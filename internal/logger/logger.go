package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log = slog.Default()

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// Error records are also sent to Sentry when a DSN is configured.
func Init(isDev bool, sentryDSN string, loc *time.Location) *slog.Logger {
	handlers := []slog.Handler{NewHandler(os.Stdout, isDev, loc)}

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
	return Log
}

// NewHandler returns the stdout handler used by Init, writing to w.
// Timestamps are rendered under "ts" in loc.
func NewHandler(w io.Writer, isDev bool, loc *time.Location) slog.Handler {
	if loc == nil {
		loc = time.UTC
	}
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	}
	if isDev {
		opts.Level = slog.LevelDebug
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Flush waits for buffered Sentry events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
