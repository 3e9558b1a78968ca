package store

import (
	"context"
	"fmt"

	"github.com/abhisek/lessonflow/internal/config"
	"github.com/abhisek/lessonflow/internal/logger"
)

// NewDurable returns the account-mode store over a remote backend.
func NewDurable(backend Backend) *DocumentStore {
	return &DocumentStore{backend: backend, kind: "durable"}
}

// OpenDurable connects the backend selected by cfg.Backend.
func OpenDurable(ctx context.Context, cfg config.Config, log *logger.Logger) (*DocumentStore, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := config.EnsureDir(cfg.DataDir); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		backend, err = OpenSQLite(ctx, cfg.DSN)
	case config.BackendPostgres:
		backend, err = OpenPostgres(ctx, cfg.DSN)
	case config.BackendRedis:
		backend, err = OpenRedis(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	log.Info("durable store opened", "backend", cfg.Backend)
	return NewDurable(backend), nil
}
