package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// TopArtists returns the user's most listened artists over the medium term.
func (c *Client) TopArtists(ctx context.Context, limit int) ([]Artist, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotify.Limit(topLimit(limit)),
		spotify.Timerange(spotify.MediumTermRange),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	artists := make([]Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// TopTracks returns the user's most listened tracks over the medium term.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Limit(topLimit(limit)),
		spotify.Timerange(spotify.MediumTermRange),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	tracks := make([]Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

func topLimit(limit int) int {
	if limit <= 0 {
		return 5
	}
	return min(limit, maxSearchLimit)
}
