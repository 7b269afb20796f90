// Package logging builds the application logger from LOG_* configuration.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/config"
)

// Option configures New.
type Option func(l *logrus.Logger)

// WithOutput redirects log output, os.Stderr by default.
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) { l.SetOutput(w) }
}

// New returns a logger for cfg. Components derive their own logger with
// WithField("component", name).
func New(cfg config.LogConfig, opts ...Option) (logrus.FieldLogger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed parse loglevel: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	for _, opt := range opts {
		opt(logger)
	}
	return logger, nil
}

// Discard returns a logger that drops every entry. Useful in tests.
func Discard() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
