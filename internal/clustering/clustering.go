// Package clustering orders catalog candidates by how closely their audio
// features match a target attribute vector.
package clustering

// Features are the audio features used for ranking.
type Features struct {
	Energy       float32 `json:"energy"`
	Valence      float32 `json:"valence"`
	Danceability float32 `json:"danceability"`
}

// Candidate is a catalog track considered for a playlist.
type Candidate struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Artist   string    `json:"artist"`
	Features *Features `json:"features,omitempty"` // nil if not fetched or unavailable
}

// Target is the attribute vector candidates are ranked against.
type Target struct {
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Danceability float64 `json:"danceability"`
}

// Config holds ranking parameters.
type Config struct {
	NumClusters int // Number of clusters to create (default: 3)
	Runs        int // k-means restarts; the lowest-error partition wins (default: 10)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{NumClusters: 3, Runs: 10}
}
