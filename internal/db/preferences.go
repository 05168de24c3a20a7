package db

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository handles preference database operations.
type PreferencesRepository struct {
	pool *pgxpool.Pool
}

const preferencesColumns = `user_id, favorite_genres, favorite_artists, favorite_tracks,
	mood_history, hobby_tags, listening_time, tempo_preference, created_at, updated_at`

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Get retrieves a user's preferences.
func (r *PreferencesRepository) Get(ctx context.Context, userID string) (*Preferences, error) {
	return getPreferences(ctx, r.pool, userID, "")
}

func getPreferences(ctx context.Context, q rowQuerier, userID, lock string) (*Preferences, error) {
	query := `SELECT ` + preferencesColumns + ` FROM preferences WHERE user_id = $1 ` + lock

	var p Preferences
	err := q.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FavoriteGenres,
		&p.FavoriteArtists,
		&p.FavoriteTracks,
		&p.MoodHistory,
		&p.HobbyTags,
		&p.ListeningTime,
		&p.TempoPreference,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	return &p, nil
}

// Upsert merges update into the user's current preferences, creating the row
// with defaults if it does not exist yet.
func (r *PreferencesRepository) Upsert(ctx context.Context, userID string, update PreferencesUpdate) (*Preferences, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := getPreferences(ctx, tx, userID, "FOR UPDATE")
	if errors.Is(err, ErrNotFound) {
		current = DefaultPreferences(userID)
	} else if err != nil {
		return nil, err
	}

	merged := MergePreferences(*current, update)

	query := `
		INSERT INTO preferences (` + preferencesColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			favorite_genres = EXCLUDED.favorite_genres,
			favorite_artists = EXCLUDED.favorite_artists,
			favorite_tracks = EXCLUDED.favorite_tracks,
			mood_history = EXCLUDED.mood_history,
			hobby_tags = EXCLUDED.hobby_tags,
			listening_time = EXCLUDED.listening_time,
			tempo_preference = EXCLUDED.tempo_preference,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		userID,
		merged.FavoriteGenres,
		merged.FavoriteArtists,
		merged.FavoriteTracks,
		merged.MoodHistory,
		merged.HobbyTags,
		merged.ListeningTime,
		merged.TempoPreference,
	).Scan(&merged.CreatedAt, &merged.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting preferences: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &merged, nil
}

// AppendMood adds a mood to the user's mood history.
func (r *PreferencesRepository) AppendMood(ctx context.Context, userID, mood string) error {
	query := `
		INSERT INTO preferences (user_id, mood_history)
		VALUES ($1, ARRAY[$2::text])
		ON CONFLICT (user_id) DO UPDATE SET
			mood_history = array_append(preferences.mood_history, $2::text),
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, userID, mood); err != nil {
		return fmt.Errorf("appending mood: %w", err)
	}
	return nil
}

// DefaultPreferences returns the preferences of a user who has saved none.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:          userID,
		FavoriteGenres:  []string{},
		FavoriteArtists: []string{},
		FavoriteTracks:  []string{},
		MoodHistory:     []string{},
		HobbyTags:       []string{},
		ListeningTime:   DefaultListeningTime,
		TempoPreference: DefaultTempoPreference,
	}
}

// MergePreferences applies the non-nil fields of update to current. Empty
// strings keep the current value.
func MergePreferences(current Preferences, update PreferencesUpdate) Preferences {
	pick := func(cur []string, upd *[]string) []string {
		src := cur
		if upd != nil {
			src = *upd
		}
		if src == nil {
			return []string{}
		}
		return slices.Clone(src)
	}

	merged := current
	merged.FavoriteGenres = pick(current.FavoriteGenres, update.FavoriteGenres)
	merged.FavoriteArtists = pick(current.FavoriteArtists, update.FavoriteArtists)
	merged.FavoriteTracks = pick(current.FavoriteTracks, update.FavoriteTracks)
	merged.MoodHistory = pick(current.MoodHistory, update.MoodHistory)
	merged.HobbyTags = pick(current.HobbyTags, update.HobbyTags)

	if update.ListeningTime != nil && *update.ListeningTime != "" {
		merged.ListeningTime = *update.ListeningTime
	}
	if update.TempoPreference != nil && *update.TempoPreference != "" {
		merged.TempoPreference = *update.TempoPreference
	}
	if merged.ListeningTime == "" {
		merged.ListeningTime = DefaultListeningTime
	}
	if merged.TempoPreference == "" {
		merged.TempoPreference = DefaultTempoPreference
	}
	return merged
}
