package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-moodify/internal/moods"
)

const (
	maxSearchLimit  = 50
	fallbackGenre   = "pop"
	fromTokenMarket = "from_token"
)

// SearchQuery builds the catalog query for a set of search parameters. Only
// the first seed genre is used; the catalog search endpoint has no attribute
// targeting, so ranking against the targets happens afterwards.
func SearchQuery(params moods.SearchParams) string {
	genre := fallbackGenre
	if len(params.SeedGenres) > 0 && strings.TrimSpace(params.SeedGenres[0]) != "" {
		genre = params.SeedGenres[0]
	}
	return "genre:" + genre
}

// SearchTracks searches the catalog for tracks matching params in market.
// Top tracks of each seed artist come first, then the genre results.
// Duplicates are dropped and the total is capped at the search limit. A seed
// artist whose top tracks cannot be fetched is skipped.
func (c *Client) SearchTracks(ctx context.Context, params moods.SearchParams, market string) ([]Track, error) {
	limit := params.Limit
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	opts := []spotify.RequestOption{spotify.Limit(limit)}
	if market != "" {
		opts = append(opts, spotify.Market(market))
	}

	query := SearchQuery(params)
	c.logger.Debug().Str("query", query).Str("market", market).Int("limit", limit).Msg("searching tracks")

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}

	var found []Track
	if result.Tracks != nil {
		found = make([]Track, 0, len(result.Tracks.Tracks))
		for _, t := range result.Tracks.Tracks {
			found = append(found, convertTrack(t))
		}
	}

	var seeded []Track
	for _, artistID := range params.SeedArtists {
		top, err := c.ArtistTopTracks(ctx, artistID, market)
		if err != nil {
			c.logger.Warn().Err(err).Str("artist_id", artistID).Msg("skipping seed artist")
			continue
		}
		seeded = append(seeded, top...)
	}

	return mergeTracks(limit, seeded, found), nil
}

// ArtistTopTracks returns an artist's most popular tracks in market. An
// empty market uses the country of the authenticated user.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID, market string) ([]Track, error) {
	if market == "" {
		market = fromTokenMarket
	}
	top, err := c.api.GetArtistsTopTracks(ctx, spotify.ID(artistID), market)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks for artist %s: %w", artistID, err)
	}

	tracks := make([]Track, 0, len(top))
	for _, t := range top {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// mergeTracks concatenates lists, keeping the first occurrence of each track
// ID, up to limit tracks.
func mergeTracks(limit int, lists ...[]Track) []Track {
	seen := make(map[string]struct{})
	out := make([]Track, 0, limit)
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

// SearchArtists searches the catalog for artists by name, best match first.
func (c *Client) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = 10
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	if result.Artists == nil {
		return []Artist{}, nil
	}

	artists := make([]Artist, 0, len(result.Artists.Artists))
	for _, a := range result.Artists.Artists {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// convertTrack converts a Spotify FullTrack to a Track.
func convertTrack(t spotify.FullTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	track := Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMs: int(t.Duration),
		URI:        string(t.URI),
		PreviewURL: t.PreviewURL,
	}
	if len(t.Album.Images) > 0 {
		track.AlbumArt = t.Album.Images[0].URL
	}
	return track
}

func convertArtist(a spotify.FullArtist) Artist {
	artist := Artist{
		ID:     a.ID.String(),
		Name:   a.Name,
		Genres: a.Genres,
	}
	if artist.Genres == nil {
		artist.Genres = []string{}
	}
	if len(a.Images) > 0 {
		artist.ImageURL = a.Images[0].URL
	}
	return artist
}
