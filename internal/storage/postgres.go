package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SahinShazi/HealthSync/internal"
)

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const preferencesSchema = `CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

type PostgresPreferences struct {
	pool   pgxPool
	logger internal.Logger
}

func NewPostgresPreferences(pool pgxPool, logger internal.Logger) *PostgresPreferences {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &PostgresPreferences{pool: pool, logger: logger}
}

// DialPostgres opens a pool, pings it and makes sure the table exists.
func DialPostgres(ctx context.Context, dsn string, logger internal.Logger) (*PostgresPreferences, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: postgres connect: %w", err)
	}
	p := NewPostgresPreferences(pool, logger)
	if err := p.Init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Init pings the database and creates the preferences table if needed.
func (p *PostgresPreferences) Init(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("storage: postgres ping: %w", err)
	}
	if _, err := p.pool.Exec(ctx, preferencesSchema); err != nil {
		return fmt.Errorf("storage: create preferences table: %w", err)
	}
	return nil
}

func (p *PostgresPreferences) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		p.logger.Errorf("failed to read preference %s: %v", key, err)
		return "", false, fmt.Errorf("storage: postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresPreferences) Set(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO preferences (key, value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		p.logger.Errorf("failed to upsert preference %s: %v", key, err)
		return fmt.Errorf("storage: postgres set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresPreferences) Remove(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM preferences WHERE key = $1`, key); err != nil {
		return fmt.Errorf("storage: postgres delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresPreferences) Close() error {
	p.pool.Close()
	return nil
}

var _ PreferenceStore = (*PostgresPreferences)(nil)
