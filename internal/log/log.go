// Package log builds logrus entries carrying session fields from a context.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey struct{}

// ContextKey is the context key under which SessionContext is stored.
var ContextKey = contextKey{}

// SessionContext identifies the session a log line belongs to.
type SessionContext struct {
	SessionID string
	Binary    string
}

// WithSession returns a copy of ctx carrying the session fields.
func WithSession(ctx context.Context, sessionID, binary string) context.Context {
	return context.WithValue(ctx, ContextKey, SessionContext{SessionID: sessionID, Binary: binary})
}

// Entry takes a context.Context and constructs a logrus.Entry from it,
// adding the session fields when present.
func Entry(ctx context.Context) *logrus.Entry {
	if sc, ok := ctx.Value(ContextKey).(SessionContext); ok {
		return logrus.WithFields(logrus.Fields{
			"session": sc.SessionID,
			"server":  sc.Binary,
		})
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Setup configures the standard logger: output, level name and format
// ("text" or "json").
func Setup(out io.Writer, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	logrus.SetOutput(out)
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("log: unknown format %q", format)
	}
	return nil
}
