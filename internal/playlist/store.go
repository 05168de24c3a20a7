package playlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-moodify/internal/db"
)

// Store persists playlists, audit records and mood history.
type Store interface {
	CreatePlaylist(ctx context.Context, p *db.Playlist) error
	GetPlaylist(ctx context.Context, id uuid.UUID) (*db.Playlist, error)
	ListPlaylists(ctx context.Context, userID string, limit int) ([]db.Playlist, error)
	CreateRecommendation(ctx context.Context, rec *db.Recommendation) error
	AppendMood(ctx context.Context, userID, mood string) error
}

// DBStore adapts the PostgreSQL repositories to Store.
func DBStore(database *db.DB) Store {
	return &dbStore{db: database}
}

type dbStore struct {
	db *db.DB
}

func (s *dbStore) CreatePlaylist(ctx context.Context, p *db.Playlist) error {
	return s.db.Playlists().Create(ctx, p)
}

func (s *dbStore) GetPlaylist(ctx context.Context, id uuid.UUID) (*db.Playlist, error) {
	return s.db.Playlists().Get(ctx, id)
}

func (s *dbStore) ListPlaylists(ctx context.Context, userID string, limit int) ([]db.Playlist, error) {
	return s.db.Playlists().ListForUser(ctx, userID, limit)
}

func (s *dbStore) CreateRecommendation(ctx context.Context, rec *db.Recommendation) error {
	return s.db.Recommendations().Create(ctx, rec)
}

func (s *dbStore) AppendMood(ctx context.Context, userID, mood string) error {
	return s.db.Preferences().AppendMood(ctx, userID, mood)
}
