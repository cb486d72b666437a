package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey string

// RequestIDKey is the context key the request-id middleware stores under.
const RequestIDKey ctxKey = "request_id"

// Logger wraps logrus.Logger with the service's field conventions.
type Logger struct {
	*logrus.Logger
}

// New creates a JSON logger at the given level, falling back to info.
func New(level string) *Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)

	return &Logger{Logger: log}
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *Logger {
	l := New("panic")
	l.SetOutput(io.Discard)
	return l
}

// WithComponent is WithContext tagged with the emitting package.
func (l *Logger) WithComponent(ctx context.Context, component string) *logrus.Entry {
	return l.WithContext(ctx).WithField("component", component)
}

func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.Logger.WithField("request_id", requestID)
}

// WithContext attaches the request id carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return l.WithRequestID(id)
	}
	return logrus.NewEntry(l.Logger)
}

// HTTPRequest logs one completed request.
func (l *Logger) HTTPRequest(ctx context.Context, method, path, clientIP string, statusCode int, durationMS int64) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"client_ip":   clientIP,
		"status_code": statusCode,
		"duration_ms": durationMS,
	})

	if statusCode >= 500 {
		entry.Error("HTTP request failed")
	} else if statusCode >= 400 {
		entry.Warn("HTTP request completed with error")
	} else {
		entry.Info("HTTP request completed")
	}
}
