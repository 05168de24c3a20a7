package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultHistoryLimit is the number of playlists returned by ListForUser
// when no limit is given.
const DefaultHistoryLimit = 20

// PlaylistRepository handles playlist database operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

const playlistColumns = `id, user_id, spotify_playlist_id, name, description, url, mood,
	energy, valence, danceability, tempo_min, tempo_max, track_count, cover_image, created_at`

// Create inserts a new playlist. A nil ID is replaced with a fresh UUID.
func (r *PlaylistRepository) Create(ctx context.Context, p *Playlist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO playlists (` + playlistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.UserID,
		p.SpotifyPlaylistID,
		p.Name,
		p.Description,
		p.URL,
		p.Mood,
		p.Energy,
		p.Valence,
		p.Danceability,
		p.TempoMin,
		p.TempoMax,
		p.TrackCount,
		p.CoverImage,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by ID.
func (r *PlaylistRepository) Get(ctx context.Context, id uuid.UUID) (*Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`

	p, err := scanPlaylist(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}
	return p, nil
}

// ListForUser returns a user's playlists, newest first.
func (r *PlaylistRepository) ListForUser(ctx context.Context, userID string, limit int) ([]Playlist, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying user playlists: %w", err)
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		playlists = append(playlists, *p)
	}
	return playlists, rows.Err()
}

func scanPlaylist(row pgx.Row) (*Playlist, error) {
	var p Playlist
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.SpotifyPlaylistID,
		&p.Name,
		&p.Description,
		&p.URL,
		&p.Mood,
		&p.Energy,
		&p.Valence,
		&p.Danceability,
		&p.TempoMin,
		&p.TempoMax,
		&p.TrackCount,
		&p.CoverImage,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
