package clustering

import (
	"fmt"
	"strings"
)

const sampleTrackCount = 3

// FormatRanking returns a human-readable summary of a ranking: one block per
// group with up to three sample tracks, then the unscored count.
func FormatRanking(r Ranking) string {
	var sb strings.Builder

	total := len(r.Unscored)
	for _, g := range r.Groups {
		total += len(g.Candidates)
	}

	if len(r.Groups) == 0 {
		fmt.Fprintf(&sb, "No scored tracks from %d candidates\n", total)
		return sb.String()
	}

	groupWord := "group"
	if len(r.Groups) > 1 {
		groupWord = "groups"
	}
	fmt.Fprintf(&sb, "Ranked %d tracks into %d %s", total, len(r.Groups), groupWord)
	if len(r.Unscored) > 0 {
		fmt.Fprintf(&sb, " (%d without audio features)", len(r.Unscored))
	}
	sb.WriteString("\n")

	for i, g := range r.Groups {
		sb.WriteString("\n")
		sb.WriteString(formatGroup(i+1, g))
	}

	return sb.String()
}

// formatGroup formats a single group with its sample tracks.
func formatGroup(num int, g Group) string {
	var sb strings.Builder

	trackWord := "track"
	if len(g.Candidates) > 1 {
		trackWord = "tracks"
	}

	fmt.Fprintf(&sb, "%d. %s (%d %s, distance %.2f)\n", num, g.Vibe, len(g.Candidates), trackWord, g.Distance)
	fmt.Fprintf(&sb, "   energy %.2f · valence %.2f · danceability %.2f\n",
		g.Centroid.Energy, g.Centroid.Valence, g.Centroid.Danceability)

	sampleCount := min(sampleTrackCount, len(g.Candidates))
	for i := 0; i < sampleCount; i++ {
		c := g.Candidates[i]
		fmt.Fprintf(&sb, "  • %q - %s\n", c.Name, c.Artist)
	}

	if remaining := len(g.Candidates) - sampleTrackCount; remaining > 0 {
		fmt.Fprintf(&sb, "  ... and %d more\n", remaining)
	}

	return sb.String()
}
