// Package db provides PostgreSQL database access for Moodify.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

//go:embed schema.sql
var schema string

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent, so it
// is safe to run on each start.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Users returns a UserRepository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{pool: db.pool}
}

// Sessions returns a SessionRepository.
func (db *DB) Sessions() *SessionRepository {
	return &SessionRepository{pool: db.pool}
}

// Preferences returns a PreferencesRepository.
func (db *DB) Preferences() *PreferencesRepository {
	return &PreferencesRepository{pool: db.pool}
}

// Playlists returns a PlaylistRepository.
func (db *DB) Playlists() *PlaylistRepository {
	return &PlaylistRepository{pool: db.pool}
}

// Recommendations returns a RecommendationRepository.
func (db *DB) Recommendations() *RecommendationRepository {
	return &RecommendationRepository{pool: db.pool}
}

// History returns a HistoryRepository.
func (db *DB) History() *HistoryRepository {
	return &HistoryRepository{pool: db.pool}
}
