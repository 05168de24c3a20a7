package clustering

import (
	"strings"
	"testing"
)

func TestFormatRanking(t *testing.T) {
	makeGroup := func(vibe string, names ...string) Group {
		g := Group{Vibe: vibe, Centroid: Features{Energy: 0.8, Valence: 0.7, Danceability: 0.6}, Distance: 0.12}
		for _, n := range names {
			g.Candidates = append(g.Candidates, Candidate{ID: n, Name: n, Artist: "Artist " + n})
		}
		return g
	}

	tests := []struct {
		name           string
		ranking        Ranking
		wantContains   []string
		wantNotContain []string
	}{
		{
			name:         "nothing scored",
			ranking:      Ranking{Unscored: []Candidate{{ID: "x"}, {ID: "y"}}},
			wantContains: []string{"No scored tracks from 2 candidates"},
		},
		{
			name:           "single group",
			ranking:        Ranking{Groups: []Group{makeGroup("Upbeat Party", "One")}},
			wantContains:   []string{"Ranked 1 tracks into 1 group\n", "1. Upbeat Party (1 track, distance 0.12)", `"One" - Artist One`},
			wantNotContain: []string{"without audio features", "more"},
		},
		{
			name: "truncated samples and unscored",
			ranking: Ranking{
				Groups: []Group{
					makeGroup("Upbeat Party", "A", "B", "C", "D", "E"),
					makeGroup("Chill & Happy", "F"),
				},
				Unscored: []Candidate{{ID: "z"}},
			},
			wantContains:   []string{"Ranked 7 tracks into 2 groups (1 without audio features)", "... and 2 more", "2. Chill & Happy"},
			wantNotContain: []string{`"D"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRanking(tt.ranking)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, notWant := range tt.wantNotContain {
				if strings.Contains(got, notWant) {
					t.Errorf("output should not contain %q:\n%s", notWant, got)
				}
			}
		})
	}
}
