package logger

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/xy-planning-network/trailhead"
)

// A SentryLogger writes through a SkipLogger
// and ships warnings and errors carrying a LogContext.Error to Sentry.
type SentryLogger struct {
	l SkipLogger
}

// NewSentryLogger constructs a SentryLogger writing through tl.
// If Sentry cannot be initialized with dsn, tl is returned.
func NewSentryLogger(tl *TrailheadLogger, dsn string) Logger {
	err := sentry.Init(sentry.ClientOptions{
		BeforeSend:   scrubEvent,
		Dsn:          dsn,
		Environment:  tl.env,
		IgnoreErrors: []string{"write: broken pipe", "context canceled"},
	})
	if err != nil {
		tl.Error(fmt.Sprintf("unable to init Sentry: %s", err), nil)
		return tl
	}

	return &SentryLogger{l: tl.AddSkip(1 + tl.Skip())}
}

// Flush waits up to timeout for queued events to reach Sentry.
// Without a SENTRY_DSN, Flush returns immediately.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// AddSkip replaces the current number of frames to scroll back
// when logging a message.
//
// The SentryLogger's own frame is always accounted for.
func (sl *SentryLogger) AddSkip(i int) SkipLogger {
	return &SentryLogger{l: sl.l.AddSkip(1 + i)}
}

func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }
func (sl *SentryLogger) Info(msg string, ctx *LogContext)  { sl.l.Info(msg, ctx) }

// Warn writes a warning log and sends it to Sentry.
func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.logAndSend(LogLevelWarn, sentry.LevelWarning, sl.l.Warn, msg, ctx)
}

// Error writes an error log and sends it to Sentry.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.logAndSend(LogLevelError, sentry.LevelError, sl.l.Error, msg, ctx)
}

// Fatal writes a fatal log and sends it to Sentry.
func (sl *SentryLogger) Fatal(msg string, ctx *LogContext) {
	sl.logAndSend(LogLevelFatal, sentry.LevelFatal, sl.l.Fatal, msg, ctx)
}

func (sl *SentryLogger) LogLevel() LogLevel { return sl.l.LogLevel() }

// Skip returns the current amount of frames to scroll back
// when logging a message.
func (sl *SentryLogger) Skip() int { return sl.l.Skip() - 1 }

func (sl *SentryLogger) logAndSend(ll LogLevel, level sentry.Level, logFn func(string, *LogContext), msg string, ctx *LogContext) {
	if sl.l.LogLevel() > ll {
		return
	}

	logFn(msg, ctx)
	send(level, msg, ctx)
}

// send ships the LogContext.Error to Sentry,
// tagged with the request ID and including any LogContext.Data.
func send(level sentry.Level, msg string, ctx *LogContext) {
	if ctx == nil || ctx.Error == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if ctx.User != nil {
			scope.SetUser(sentry.User{Email: ctx.User.GetEmail(), ID: ctx.User.GetID()})
		}

		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
			if id, ok := ctx.Request.Context().Value(trailhead.RequestIDKey).(string); ok {
				scope.SetTag("request_id", id)
			}
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		if ctx.Caller != "" {
			scope.SetTag("caller", ctx.Caller)
		}

		scope.SetExtra("message", msg)
		scope.SetLevel(level)
		sentry.CaptureException(ctx.Error)
	})
}

// scrubEvent drops the session tokens a sentry.Request copies from an *http.Request.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}

	if event.Request.Cookies != "" {
		event.Request.Cookies = trailhead.LogMaskVal
	}

	for _, k := range maskedHeaders {
		if _, ok := event.Request.Headers[k]; ok {
			event.Request.Headers[k] = trailhead.LogMaskVal
		}
	}

	return event
}
