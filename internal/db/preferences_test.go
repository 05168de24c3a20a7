package db

import (
	"encoding/json"
	"slices"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestMergePreferences(t *testing.T) {
	current := Preferences{
		UserID:          "u1",
		FavoriteGenres:  []string{"jazz"},
		FavoriteArtists: []string{"a1"},
		FavoriteTracks:  []string{},
		MoodHistory:     []string{"happy"},
		HobbyTags:       []string{"reading"},
		ListeningTime:   "night",
		TempoPreference: "slow",
	}

	tests := []struct {
		name   string
		update PreferencesUpdate
		check  func(t *testing.T, got Preferences)
	}{
		{
			name:   "empty update keeps everything",
			update: PreferencesUpdate{},
			check: func(t *testing.T, got Preferences) {
				if !slices.Equal(got.FavoriteGenres, []string{"jazz"}) || got.ListeningTime != "night" || got.TempoPreference != "slow" {
					t.Errorf("merged = %+v", got)
				}
			},
		},
		{
			name:   "replaces provided lists",
			update: PreferencesUpdate{FavoriteGenres: ptr([]string{"rock", "pop"}), HobbyTags: ptr([]string{})},
			check: func(t *testing.T, got Preferences) {
				if !slices.Equal(got.FavoriteGenres, []string{"rock", "pop"}) {
					t.Errorf("FavoriteGenres = %v", got.FavoriteGenres)
				}
				if got.HobbyTags == nil || len(got.HobbyTags) != 0 {
					t.Errorf("HobbyTags = %#v, want empty", got.HobbyTags)
				}
				if !slices.Equal(got.FavoriteArtists, []string{"a1"}) {
					t.Errorf("FavoriteArtists = %v, want untouched", got.FavoriteArtists)
				}
			},
		},
		{
			name:   "empty strings keep current",
			update: PreferencesUpdate{ListeningTime: ptr(""), TempoPreference: ptr("fast")},
			check: func(t *testing.T, got Preferences) {
				if got.ListeningTime != "night" || got.TempoPreference != "fast" {
					t.Errorf("time/tempo = %q/%q, want night/fast", got.ListeningTime, got.TempoPreference)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, MergePreferences(current, tt.update))
		})
	}
}

func TestMergePreferencesDoesNotAlias(t *testing.T) {
	current := *DefaultPreferences("u1")
	genres := []string{"jazz"}
	merged := MergePreferences(current, PreferencesUpdate{FavoriteGenres: &genres})
	genres[0] = "mutated"

	if merged.FavoriteGenres[0] != "jazz" {
		t.Errorf("merged genres alias the update slice: %v", merged.FavoriteGenres)
	}
}

func TestMergePreferencesDefaults(t *testing.T) {
	got := MergePreferences(Preferences{UserID: "u1"}, PreferencesUpdate{})
	if got.ListeningTime != DefaultListeningTime || got.TempoPreference != DefaultTempoPreference {
		t.Errorf("defaults = %q/%q", got.ListeningTime, got.TempoPreference)
	}
	if got.MoodHistory == nil {
		t.Error("MoodHistory should be non-nil")
	}
}

func TestPreferencesUpdateJSON(t *testing.T) {
	var u PreferencesUpdate
	body := `{"favorite_genres":["lo-fi"],"tempo_preference":"fast"}`
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		t.Fatal(err)
	}
	if u.FavoriteGenres == nil || (*u.FavoriteGenres)[0] != "lo-fi" {
		t.Errorf("FavoriteGenres = %v", u.FavoriteGenres)
	}
	if u.FavoriteArtists != nil {
		t.Error("absent field should decode as nil")
	}
	if u.TempoPreference == nil || *u.TempoPreference != "fast" {
		t.Errorf("TempoPreference = %v", u.TempoPreference)
	}
}
