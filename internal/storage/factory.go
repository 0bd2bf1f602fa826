package storage

import (
	"context"
	"fmt"

	"github.com/SahinShazi/HealthSync/internal"
	"github.com/SahinShazi/HealthSync/internal/config"
)

// NewPreferenceStore builds the backend named by cfg.StorageBackend.
func NewPreferenceStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (PreferenceStore, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryPreferences(), nil
	case config.BackendFile:
		return NewFilePreferences(cfg.PrefsFile, logger)
	case config.BackendRedis:
		return DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
	case config.BackendPostgres:
		return DialPostgres(ctx, cfg.PostgresDSN, logger)
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
}

// OpenPreferenceStore is NewPreferenceStore that falls back to memory when
// the configured backend is unreachable.
func OpenPreferenceStore(ctx context.Context, cfg *config.Config, logger internal.Logger) PreferenceStore {
	store, err := NewPreferenceStore(ctx, cfg, logger)
	if err != nil {
		logger.Warnf("storage: %v; falling back to in-memory preferences", err)
		return NewMemoryPreferences()
	}
	return store
}
