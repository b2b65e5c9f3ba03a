package logger

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type cronLogger struct {
	log *Logger
}

// CronLogger adapts l to the cron scheduler's logging interface.
// Cron's routine scheduling chatter is logged at debug level.
func (l *Logger) CronLogger() cron.Logger {
	return cronLogger{log: l.With("component", "cron")}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Log(context.Background(), slog.LevelDebug, msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Log(context.Background(), slog.LevelError, msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

var _ cron.Logger = cronLogger{}
