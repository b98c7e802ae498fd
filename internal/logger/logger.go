// Package logger builds the service logger: colored text locally, JSON
// everywhere else, level from LOG_LEVEL.
package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service is attached to every entry.
const Service = "capig-dash-go"

// RequestIDHeader carries the request id in and out of the API.
const RequestIDHeader = "X-Request-ID"

type Logger struct {
	*logrus.Entry
}

type Option func(*logrus.Logger)

// WithOutput sends entries to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) { l.SetOutput(w) }
}

// WithLevel overrides LOG_LEVEL.
func WithLevel(level logrus.Level) Option {
	return func(l *logrus.Logger) { l.SetLevel(level) }
}

func New(opts ...Option) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(formatter(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_FORMAT")))
	base.SetLevel(level(os.Getenv("LOG_LEVEL")))
	for _, o := range opts {
		o(base)
	}
	return &Logger{Entry: base.WithField("service", Service)}
}

// formatter picks text for local runs and JSON otherwise. LOG_FORMAT
// ("text" or "json") wins over the environment.
func formatter(env, format string) logrus.Formatter {
	text := env == "" || env == "local"
	switch format {
	case "json":
		text = false
	case "text":
		text = true
	}
	if text {
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     env == "" || env == "local",
		}
	}
	return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
}

// level parses LOG_LEVEL, defaulting to info.
func level(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// RequestID returns the id the caller sent, or a fresh one stored on r so
// later lookups agree.
func RequestID(r *http.Request) string {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
		r.Header.Set(RequestIDHeader, id)
	}
	return id
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithRun tags a dashboard refresh with a fresh run id. The id is returned
// so it can be echoed back to the caller.
func (l *Logger) WithRun(dashboard string) (*logrus.Entry, string) {
	runID := uuid.New().String()
	return l.WithFields(logrus.Fields{
		"run_id":    runID,
		"dashboard": dashboard,
	}), runID
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
