package bootstrap

import (
	"time"

	"github.com/kbukum/whisperd/logger"
)

// Option overrides what NewApp would otherwise derive from the config.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	shutdownTimeout time.Duration
}

// WithLogger uses l instead of building a logger from the logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithShutdownTimeout bounds how long stop hooks and component shutdown may
// take, replacing shutdown_timeout from the config.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *settings) { s.shutdownTimeout = d }
}
