package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a user by Spotify ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, display_name, email, image_url, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// Upsert creates or updates a user and records a login.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, display_name, email, image_url, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			image_url = EXCLUDED.image_url,
			updated_at = NOW(),
			last_login_at = NOW()
		RETURNING created_at, updated_at, last_login_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.ImageURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}
