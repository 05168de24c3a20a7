// Package playlist turns a resolved mood into a ranked track preview and
// saves chosen tracks as a playlist on the user's account.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/justestif/go-spotify-moodify/internal/clustering"
	"github.com/justestif/go-spotify-moodify/internal/db"
	"github.com/justestif/go-spotify-moodify/internal/moods"
	"github.com/justestif/go-spotify-moodify/internal/spotify"
)

// DefaultDescription is used when a playlist is created without one.
const DefaultDescription = "Created by Moodify 🎵"

const (
	maxSeedArtists = 2
	topTrackSeeds  = 2
)

var (
	// ErrMissingMood is returned by Generate when no mood is given.
	ErrMissingMood = errors.New("mood is required")

	// ErrInvalidRequest is returned by Create when the name or tracks are missing.
	ErrInvalidRequest = errors.New("name and tracks are required")

	// ErrNotFound is returned when a playlist does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("playlist not found")
)

// Catalog is the part of the streaming provider the service needs.
type Catalog interface {
	SearchTracks(ctx context.Context, params moods.SearchParams, market string) ([]spotify.Track, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]spotify.Artist, error)
	TopArtists(ctx context.Context, limit int) ([]spotify.Artist, error)
	TopTracks(ctx context.Context, limit int) ([]spotify.Track, error)
	AudioFeatures(ctx context.Context, trackIDs []string) (map[string]clustering.Features, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (spotify.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, tracks []string) error
}

// Service handles playlist generation and persistence.
type Service struct {
	resolver *moods.Resolver
	store    Store
	market   string
	ranking  clustering.Config
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables persistence. Without a store nothing is recorded and
// History is always empty.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithMarket sets the catalog market used for searches.
func WithMarket(market string) Option {
	return func(s *Service) {
		s.market = market
	}
}

// WithRanking sets the clustering configuration used to rank candidates.
func WithRanking(cfg clustering.Config) Option {
	return func(s *Service) {
		s.ranking = cfg
	}
}

// WithLogger sets the service's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.With().Str("component", "playlist").Logger()
	}
}

// New creates a playlist service.
func New(resolver *moods.Resolver, opts ...Option) *Service {
	s := &Service{
		resolver: resolver,
		ranking:  clustering.DefaultConfig(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateRequest is the input to Generate.
type GenerateRequest struct {
	moods.Input
	UseTopArtists bool `json:"useTopArtists,omitempty"`
}

// TrackView is a track as shown in a preview.
type TrackView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artists    string `json:"artists"`
	Album      string `json:"album"`
	AlbumArt   string `json:"albumArt,omitempty"`
	Duration   int    `json:"duration"`
	URI        string `json:"uri"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// Preview is the result of Generate.
type Preview struct {
	Tracks   []TrackView        `json:"tracks"`
	Analysis moods.Result       `json:"analysis"`
	Params   moods.SearchParams `json:"spotifyParams"`
	Total    int                `json:"totalTracks"`
	Ranked   bool               `json:"ranked"`

	// Ranking is the clustering behind the track order, nil when audio
	// features were unavailable.
	Ranking *clustering.Ranking `json:"-"`
}

// Generate resolves the request, searches the catalog and ranks the
// candidates against the resolved attributes. Nothing is created on the
// user's account.
func (s *Service) Generate(ctx context.Context, catalog Catalog, userID string, req GenerateRequest) (*Preview, error) {
	if strings.TrimSpace(req.Mood) == "" {
		return nil, ErrMissingMood
	}

	result := s.resolver.Resolve(ctx, req.Input)
	params := moods.ParamsFor(result, moods.DefaultSearchLimit)

	params.SeedArtists = s.favoriteArtistSeeds(ctx, catalog, result.Artists)
	var topTracks []spotify.Track
	if req.UseTopArtists {
		topTracks = s.seedFromTop(ctx, catalog, &params)
	}

	found, err := catalog.SearchTracks(ctx, params, s.market)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}

	tracks, ranking := s.rank(ctx, catalog, uniqueTracks(params.Limit, topTracks, found), result.Attributes)

	views := make([]TrackView, len(tracks))
	for i, t := range tracks {
		views[i] = toView(t)
	}

	s.recordRecommendation(ctx, userID, nil, req, result, params)

	return &Preview{
		Tracks:   views,
		Analysis: result,
		Params:   params,
		Total:    len(views),
		Ranked:   ranking != nil && len(ranking.Groups) > 0,
		Ranking:  ranking,
	}, nil
}

// favoriteArtistSeeds resolves the caller's favorite artist names to
// catalog IDs, taking the best match for each. Names that match nothing are
// skipped.
func (s *Service) favoriteArtistSeeds(ctx context.Context, catalog Catalog, names []string) []string {
	seeds := []string{}
	for _, name := range names {
		if len(seeds) == maxSeedArtists {
			break
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		matches, err := catalog.SearchArtists(ctx, name, 1)
		if err != nil {
			s.logger.Warn().Err(err).Str("artist", name).Msg("resolving favorite artist")
			continue
		}
		if len(matches) > 0 && !slices.Contains(seeds, matches[0].ID) {
			seeds = append(seeds, matches[0].ID)
		}
	}
	return seeds
}

// seedFromTop fills the remaining seed artist slots with the user's top
// artists and returns their top tracks, which join the candidate pool.
// Failures are logged and leave the seeds as they were.
func (s *Service) seedFromTop(ctx context.Context, catalog Catalog, params *moods.SearchParams) []spotify.Track {
	if free := maxSeedArtists - len(params.SeedArtists); free > 0 {
		artists, err := catalog.TopArtists(ctx, maxSeedArtists)
		if err != nil {
			s.logger.Warn().Err(err).Msg("fetching top artists for seeds")
		}
		for _, a := range artists {
			if len(params.SeedArtists) == maxSeedArtists {
				break
			}
			if !slices.Contains(params.SeedArtists, a.ID) {
				params.SeedArtists = append(params.SeedArtists, a.ID)
			}
		}
	}

	tracks, err := catalog.TopTracks(ctx, topTrackSeeds)
	if err != nil {
		s.logger.Warn().Err(err).Msg("fetching top tracks for seeds")
		return nil
	}
	for _, t := range tracks {
		params.SeedTracks = append(params.SeedTracks, t.ID)
	}
	return tracks
}

// uniqueTracks concatenates lists, keeping the first occurrence of each
// track ID, up to limit tracks.
func uniqueTracks(limit int, lists ...[]spotify.Track) []spotify.Track {
	seen := make(map[string]struct{})
	var out []spotify.Track
	for _, list := range lists {
		for _, t := range list {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// rank reorders tracks by closeness to the target attributes. If audio
// features cannot be fetched the search order is kept.
func (s *Service) rank(ctx context.Context, catalog Catalog, tracks []spotify.Track, attrs moods.Attributes) ([]spotify.Track, *clustering.Ranking) {
	if len(tracks) == 0 {
		return tracks, nil
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	features, err := catalog.AudioFeatures(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Int("tracks", len(tracks)).Msg("audio features unavailable, keeping search order")
		return tracks, nil
	}

	candidates := make([]clustering.Candidate, len(tracks))
	byID := make(map[string]spotify.Track, len(tracks))
	for i, t := range tracks {
		c := clustering.Candidate{ID: t.ID, Name: t.Name, Artist: strings.Join(t.Artists, ", ")}
		if f, ok := features[t.ID]; ok {
			c.Features = &f
		}
		candidates[i] = c
		byID[t.ID] = t
	}

	ranking := clustering.Rank(candidates, clustering.Target{
		Energy:       attrs.Energy,
		Valence:      attrs.Valence,
		Danceability: attrs.Danceability,
	}, s.ranking)

	s.logger.Debug().
		Int("groups", len(ranking.Groups)).
		Int("unscored", len(ranking.Unscored)).
		Msg("ranked candidates")

	ordered := make([]spotify.Track, 0, len(tracks))
	for _, c := range ranking.Candidates() {
		ordered = append(ordered, byID[c.ID])
	}
	return ordered, &ranking
}

// CreateRequest is the input to Create.
type CreateRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Tracks       []string          `json:"tracks"`
	Mood         string            `json:"mood,omitempty"`
	Energy       float64           `json:"energy,omitempty"`
	Valence      float64           `json:"valence,omitempty"`
	Danceability float64           `json:"danceability,omitempty"`
	Tempo        *moods.TempoRange `json:"tempo,omitempty"`
	Public       bool              `json:"isPublic,omitempty"`
	Analysis     any               `json:"aiAnalysis,omitempty"`
	Params       any               `json:"spotifyParams,omitempty"`
}

// Created describes a playlist saved to the user's account.
type Created struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	SpotifyID  string     `json:"spotifyId"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	TrackCount int        `json:"trackCount"`
}

// Create saves tracks as a new playlist on the user's account and records
// it locally. Local persistence failures are logged; the provider playlist
// already exists by then and is still returned.
func (s *Service) Create(ctx context.Context, catalog Catalog, userID string, req CreateRequest) (*Created, error) {
	if strings.TrimSpace(req.Name) == "" || len(req.Tracks) == 0 {
		return nil, ErrInvalidRequest
	}

	description := req.Description
	if description == "" {
		description = DefaultDescription
	}

	pl, err := catalog.CreatePlaylist(ctx, req.Name, description, req.Public)
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}

	if err := catalog.AddTracksToPlaylist(ctx, pl.ID, req.Tracks); err != nil {
		return nil, fmt.Errorf("adding tracks to playlist %s: %w", pl.ID, err)
	}

	created := &Created{
		SpotifyID:  pl.ID,
		Name:       pl.Name,
		URL:        pl.URL,
		TrackCount: len(req.Tracks),
	}

	if s.store == nil {
		return created, nil
	}

	record := toDBPlaylist(userID, description, pl, req)
	if err := s.store.CreatePlaylist(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("spotify_id", pl.ID).Msg("persisting playlist")
		return created, nil
	}
	created.ID = &record.ID

	s.recordRecommendation(ctx, userID, &record.ID, req, req.Analysis, req.Params)

	if req.Mood != "" {
		if err := s.store.AppendMood(ctx, userID, req.Mood); err != nil {
			s.logger.Warn().Err(err).Str("mood", req.Mood).Msg("appending mood history")
		}
	}

	return created, nil
}

// History returns the user's most recent playlists.
func (s *Service) History(ctx context.Context, userID string) ([]db.Playlist, error) {
	if s.store == nil {
		return []db.Playlist{}, nil
	}
	playlists, err := s.store.ListPlaylists(ctx, userID, db.DefaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	return playlists, nil
}

// Get returns one of the user's playlists. A malformed ID, a missing
// playlist and another user's playlist all yield ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, playlistID string) (*db.Playlist, error) {
	if s.store == nil {
		return nil, ErrNotFound
	}
	id, err := uuid.Parse(playlistID)
	if err != nil {
		return nil, ErrNotFound
	}

	p, err := s.store.GetPlaylist(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}
	if p.UserID != userID {
		return nil, ErrNotFound
	}
	return p, nil
}

// recordRecommendation writes an audit row. Failures are logged only.
func (s *Service) recordRecommendation(ctx context.Context, userID string, playlistID *uuid.UUID, input, analysis, params any) {
	if s.store == nil {
		return
	}
	rec, err := db.NewRecommendation(userID, playlistID, input, analysis, params)
	if err == nil {
		err = s.store.CreateRecommendation(ctx, rec)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("recording recommendation")
	}
}

func toView(t spotify.Track) TrackView {
	return TrackView{
		ID:         t.ID,
		Name:       t.Name,
		Artists:    strings.Join(t.Artists, ", "),
		Album:      t.Album,
		AlbumArt:   t.AlbumArt,
		Duration:   t.DurationMs,
		URI:        t.URI,
		PreviewURL: t.PreviewURL,
	}
}

// toDBPlaylist converts a created playlist to its database record.
func toDBPlaylist(userID, description string, pl spotify.Playlist, req CreateRequest) db.Playlist {
	p := db.Playlist{
		UserID:            userID,
		SpotifyPlaylistID: pl.ID,
		Name:              pl.Name,
		Description:       description,
		URL:               pl.URL,
		Mood:              req.Mood,
		Energy:            req.Energy,
		Valence:           req.Valence,
		Danceability:      req.Danceability,
		TrackCount:        len(req.Tracks),
	}
	if req.Tempo != nil {
		p.TempoMin = req.Tempo.Min
		p.TempoMax = req.Tempo.Max
	}
	return p
}
