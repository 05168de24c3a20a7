package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultRecentLimit = 50

// HistoryRepository handles listening history operations.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// Add records a listened track.
func (r *HistoryRepository) Add(ctx context.Context, e *HistoryEntry) error {
	query := `
		INSERT INTO listening_history (user_id, track_id, track_name, artist_name, mood_context, hobby_context, listened_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, listened_at
	`
	err := r.pool.QueryRow(ctx, query,
		e.UserID,
		e.TrackID,
		e.TrackName,
		e.ArtistName,
		e.MoodContext,
		e.HobbyContext,
	).Scan(&e.ID, &e.ListenedAt)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// ListForUser returns the user's most recent history entries, newest first.
func (r *HistoryRepository) ListForUser(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, user_id, track_id, track_name, artist_name, mood_context, hobby_context, listened_at
		FROM listening_history
		WHERE user_id = $1
		ORDER BY listened_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying listening history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.TrackID,
			&e.TrackName,
			&e.ArtistName,
			&e.MoodContext,
			&e.HobbyContext,
			&e.ListenedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
