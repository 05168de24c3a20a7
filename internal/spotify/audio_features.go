package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-moodify/internal/clustering"
)

// AudioFeatures retrieves audio features for the given track IDs, keyed by ID.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features are absent from the result.
func (c *Client) AudioFeatures(ctx context.Context, trackIDs []string) (map[string]clustering.Features, error) {
	out := make(map[string]clustering.Features, len(trackIDs))
	if len(trackIDs) == 0 {
		return out, nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(TrackID(id))
	}

	for _, b := range batches(len(ids), maxTracksPerRequest) {
		features, err := c.api.GetAudioFeatures(ctx, ids[b.start:b.end]...)
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", b.start+1, b.end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			out[f.ID.String()] = toFeatures(f)
		}
	}

	c.logger.Debug().Int("requested", len(ids)).Int("found", len(out)).Msg("fetched audio features")
	return out, nil
}

// toFeatures copies the ranking features from a Spotify response.
func toFeatures(f *spotify.AudioFeatures) clustering.Features {
	return clustering.Features{
		Energy:       f.Energy,
		Valence:      f.Valence,
		Danceability: f.Danceability,
	}
}
