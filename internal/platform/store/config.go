package store

import "bangcheong/internal/platform/logger"

// PGConfig configures the postgres backend
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	SlowQueryMs int
}

// Config configures the store facade
type Config struct {
	PG PGConfig
}

// Option mutates the Store during Open
type Option func(*Store) error

// WithLogger attaches a logger used by the adapters
func WithLogger(l logger.Logger) Option {
	return func(s *Store) error {
		s.Log = l
		return nil
	}
}
