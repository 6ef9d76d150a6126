// Package db persists overlay state snapshots. Two backends are provided:
// Postgres through pgx for deployments that already run one, and an embedded
// sqlite file for everything else. Both expose the same snapshot interface.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

type Config struct {
	// ConnStr selects the Postgres backend; when empty, Path is used instead.
	ConnStr string `yaml:"conn_str"`
	Path    string `yaml:"path"`
}

func New(ctx context.Context, cfg *Config) (*DB, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	db := &DB{
		pool: pool,
	}

	if err = db.init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	return db, nil
}

func (db *DB) init(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS overlay_state (
			key        TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)

	return err
}

func (db *DB) Close() {
	db.pool.Close()
}

// LoadSnapshot returns the persisted snapshot for key, or nil when none
// exists yet.
func (db *DB) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	err := db.pool.QueryRow(ctx, `
		SELECT data
		FROM overlay_state
		WHERE key = $1
	`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return data, nil
}

func (db *DB) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO overlay_state (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}
