// Package logger emits single-line JSON log records, one per call, with a
// severity tag, an RFC3339 timestamp and the original message. Severities
// map to three distinct writers so hosting consoles can split streams.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Fields holds structured data attached to a single record.
type Fields map[string]any

// Logger is a route-scoped structured logger.
type Logger struct {
	sl    *slog.Logger
	route string
}

func newFormatter() *slog.JSONFormatter {
	return slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "timestamp",
			slog.FieldKeyLevel:    "severity",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = time.RFC3339
	})
}

// New creates a logger scoped to one route. INFO records go to stdout,
// WARNING and ERROR to stderr.
func New(route string) *Logger {
	return NewWithWriters(route, os.Stdout, os.Stderr, os.Stderr)
}

// NewWithWriters routes default, WARNING and ERROR severities to three
// separate writers. Tests pass buffers here.
func NewWithWriters(route string, infoW, warnW, errW io.Writer) *Logger {
	infoH := handler.NewIOWriterHandler(infoW, []slog.Level{
		slog.TraceLevel, slog.DebugLevel, slog.InfoLevel, slog.NoticeLevel,
	})
	warnH := handler.NewIOWriterHandler(warnW, []slog.Level{slog.WarnLevel})
	errH := handler.NewIOWriterHandler(errW, []slog.Level{
		slog.ErrorLevel, slog.FatalLevel, slog.PanicLevel,
	})

	formatter := newFormatter()
	infoH.SetFormatter(formatter)
	warnH.SetFormatter(formatter)
	errH.SetFormatter(formatter)

	sl := slog.NewWithHandlers(infoH, warnH, errH)
	sl.ReportCaller = false

	return &Logger{sl: sl, route: route}
}

// With returns a logger for the same writers scoped to a different route.
func (l *Logger) With(route string) *Logger {
	return &Logger{sl: l.sl, route: route}
}

func (l *Logger) record(fields Fields) *slog.Record {
	m := slog.M{"route": l.route}
	for k, v := range fields {
		m[k] = v
	}
	return l.sl.WithFields(m)
}

// Info logs one record at default severity.
func (l *Logger) Info(msg string, fields Fields) {
	l.record(fields).Info(msg)
}

// Warn logs one record at WARNING severity.
func (l *Logger) Warn(msg string, fields Fields) {
	l.record(fields).Warn(msg)
}

// Error logs one record at ERROR severity.
func (l *Logger) Error(msg string, fields Fields) {
	l.record(fields).Error(msg)
}

// Timer measures a span of work. Create with StartTimer, finish with Done.
type Timer struct {
	l     *Logger
	start time.Time
}

// StartTimer starts a timer. Done logs the elapsed duration in ms.
func (l *Logger) StartTimer() *Timer {
	return &Timer{l: l, start: time.Now()}
}

// Elapsed reports the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Done logs msg with a durationMs field measured from StartTimer.
func (t *Timer) Done(msg string, fields Fields) {
	merged := Fields{"durationMs": t.Elapsed().Milliseconds()}
	for k, v := range fields {
		merged[k] = v
	}
	t.l.Info(msg, merged)
}
