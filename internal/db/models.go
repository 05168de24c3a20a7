package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Preference defaults applied when a user has not chosen a value.
const (
	DefaultListeningTime   = "any"
	DefaultTempoPreference = "medium"
)

// User represents a Spotify user profile.
type User struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Email       string     `json:"email"`
	ImageURL    *string    `json:"imageUrl,omitempty"` // nullable
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"` // nullable
}

// Session represents an authenticated web session.
type Session struct {
	ID           string
	UserID       string
	UserName     string // users.display_name, filled by Get
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Preferences holds a user's saved listening preferences.
type Preferences struct {
	UserID          string    `json:"userId"`
	FavoriteGenres  []string  `json:"favorite_genres"`
	FavoriteArtists []string  `json:"favorite_artists"`
	FavoriteTracks  []string  `json:"favorite_tracks"`
	MoodHistory     []string  `json:"mood_history"`
	HobbyTags       []string  `json:"hobby_tags"`
	ListeningTime   string    `json:"listening_time_preference"`
	TempoPreference string    `json:"tempo_preference"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PreferencesUpdate is a partial update. Nil fields keep their current value.
type PreferencesUpdate struct {
	FavoriteGenres  *[]string `json:"favorite_genres,omitempty"`
	FavoriteArtists *[]string `json:"favorite_artists,omitempty"`
	FavoriteTracks  *[]string `json:"favorite_tracks,omitempty"`
	MoodHistory     *[]string `json:"mood_history,omitempty"`
	HobbyTags       *[]string `json:"hobby_tags,omitempty"`
	ListeningTime   *string   `json:"listening_time_preference,omitempty"`
	TempoPreference *string   `json:"tempo_preference,omitempty"`
}

// Playlist is a playlist created through Moodify.
type Playlist struct {
	ID                uuid.UUID `json:"id"`
	UserID            string    `json:"userId"`
	SpotifyPlaylistID string    `json:"spotifyPlaylistId"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	URL               string    `json:"url"`
	Mood              string    `json:"mood"`
	Energy            float64   `json:"energy"`
	Valence           float64   `json:"valence"`
	Danceability      float64   `json:"danceability"`
	TempoMin          int       `json:"tempoMin"`
	TempoMax          int       `json:"tempoMax"`
	TrackCount        int       `json:"trackCount"`
	CoverImage        *string   `json:"coverImage,omitempty"` // nullable
	CreatedAt         time.Time `json:"createdAt"`
}

// Recommendation is an audit record of the inputs, analysis and search
// parameters behind a generation.
type Recommendation struct {
	ID           uuid.UUID       `json:"id"`
	UserID       string          `json:"userId"`
	PlaylistID   *uuid.UUID      `json:"playlistId,omitempty"` // nullable
	InputData    json.RawMessage `json:"inputData"`
	Analysis     json.RawMessage `json:"analysis"`
	SearchParams json.RawMessage `json:"searchParams"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// HistoryEntry is a track the user listened to, with the context it was
// played in.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"userId"`
	TrackID      string    `json:"track_id"`
	TrackName    string    `json:"track_name"`
	ArtistName   string    `json:"artist_name"`
	MoodContext  string    `json:"mood_context"`
	HobbyContext string    `json:"hobby_context"`
	ListenedAt   time.Time `json:"listened_at"`
}
