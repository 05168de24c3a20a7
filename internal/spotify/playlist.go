package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

const (
	maxTracksPerRequest = 100
	trackURIPrefix      = "spotify:track:"
)

// CreatePlaylist creates a new playlist for the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (Playlist, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return Playlist{}, err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return Playlist{}, fmt.Errorf("creating playlist: %w", err)
	}

	return Playlist{
		ID:   playlist.ID.String(),
		Name: playlist.Name,
		URL:  playlist.ExternalURLs["spotify"],
	}, nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Tracks may be given as bare IDs or spotify:track: URIs.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, tracks []string) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(TrackID(t))
	}

	for _, b := range batches(len(ids), maxTracksPerRequest) {
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[b.start:b.end]...); err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", b.start+1, b.end, err)
		}
	}

	return nil
}

// TrackID strips the spotify:track: prefix from a track URI. Bare IDs are
// returned unchanged.
func TrackID(uriOrID string) string {
	return strings.TrimPrefix(strings.TrimSpace(uriOrID), trackURIPrefix)
}

// TrackURI returns the spotify:track: URI for a track ID or URI.
func TrackURI(uriOrID string) string {
	return trackURIPrefix + TrackID(uriOrID)
}

type batch struct{ start, end int }

// batches splits n items into consecutive ranges of at most size.
func batches(n, size int) []batch {
	var out []batch
	for i := 0; i < n; i += size {
		out = append(out, batch{start: i, end: min(i+size, n)})
	}
	return out
}
