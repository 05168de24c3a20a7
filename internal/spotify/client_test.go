package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-moodify/internal/moods"
)

// newTestClient returns a Client whose API calls go to handler.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/")))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("path = %s, want /me", r.URL.Path)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":           "user-1",
			"display_name": "Test User",
			"email":        "test@example.com",
			"country":      "PH",
			"images":       []map[string]any{{"url": "https://img.example/1.jpg"}},
		})
	}))

	got, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	want := Profile{
		ID:          "user-1",
		DisplayName: "Test User",
		Email:       "test@example.com",
		Country:     "PH",
		ImageURL:    "https://img.example/1.jpg",
	}
	if got != want {
		t.Errorf("CurrentUser() = %+v, want %+v", got, want)
	}
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
		want   string
	}{
		{"first genre", []string{"chill", "ambient"}, "genre:chill"},
		{"no genres", nil, "genre:pop"},
		{"blank genre", []string{"  "}, "genre:pop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SearchQuery(moods.SearchParams{SeedGenres: tt.genres}); got != tt.want {
				t.Errorf("SearchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchTracks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if q.Get("q") != "genre:jazz" || q.Get("type") != "track" {
			t.Errorf("query = %v", q)
		}
		if q.Get("market") != "PH" || q.Get("limit") != "50" {
			t.Errorf("market/limit = %s/%s, want PH/50", q.Get("market"), q.Get("limit"))
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"tracks": map[string]any{
				"items": []map[string]any{
					{
						"id":          "t1",
						"name":        "Blue in Green",
						"uri":         "spotify:track:t1",
						"duration_ms": 337000,
						"preview_url": "https://p.example/t1",
						"artists":     []map[string]any{{"name": "Miles Davis"}, {"name": "Bill Evans"}},
						"album": map[string]any{
							"name":   "Kind of Blue",
							"images": []map[string]any{{"url": "https://img.example/kob.jpg"}},
						},
					},
					{"id": "t2", "name": "No Album Art", "uri": "spotify:track:t2"},
				},
			},
		})
	}))

	tracks, err := client.SearchTracks(context.Background(), moods.SearchParams{SeedGenres: []string{"jazz"}, Limit: 500}, "PH")
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}

	first := tracks[0]
	if first.ID != "t1" || first.Name != "Blue in Green" || first.URI != "spotify:track:t1" {
		t.Errorf("track = %+v", first)
	}
	if !slices.Equal(first.Artists, []string{"Miles Davis", "Bill Evans"}) {
		t.Errorf("Artists = %v", first.Artists)
	}
	if first.Album != "Kind of Blue" || first.AlbumArt != "https://img.example/kob.jpg" {
		t.Errorf("album = %q / %q", first.Album, first.AlbumArt)
	}
	if first.DurationMs != 337000 {
		t.Errorf("DurationMs = %d, want 337000", first.DurationMs)
	}
	if tracks[1].AlbumArt != "" {
		t.Errorf("AlbumArt = %q, want empty", tracks[1].AlbumArt)
	}
}

func TestSearchTracksError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"status": 403, "message": "forbidden"},
		})
	}))

	if _, err := client.SearchTracks(context.Background(), moods.SearchParams{}, ""); err == nil {
		t.Error("SearchTracks() returned nil error for 403")
	}
}

func TestSearchTracksWithSeedArtists(t *testing.T) {
	var mu sync.Mutex
	var countries []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"tracks": map[string]any{"items": []map[string]any{
					{"id": "g1", "name": "Genre One"},
					{"id": "shared", "name": "Shared"},
					{"id": "g2", "name": "Genre Two"},
				}},
			})
		case "/artists/a1/top-tracks":
			mu.Lock()
			countries = append(countries, r.URL.Query().Get("country"))
			mu.Unlock()
			writeJSON(t, w, http.StatusOK, map[string]any{"tracks": []map[string]any{
				{"id": "a1t1", "name": "Hit"},
				{"id": "shared", "name": "Shared"},
			}})
		case "/artists/broken/top-tracks":
			writeJSON(t, w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"status": 404, "message": "not found"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	params := moods.SearchParams{SeedGenres: []string{"jazz"}, SeedArtists: []string{"broken", "a1"}, Limit: 4}
	tracks, err := client.SearchTracks(context.Background(), params, "PH")
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}

	var ids []string
	for _, tr := range tracks {
		ids = append(ids, tr.ID)
	}
	if want := []string{"a1t1", "shared", "g1", "g2"}; !slices.Equal(ids, want) {
		t.Errorf("track IDs = %v, want %v", ids, want)
	}
	if !slices.Equal(countries, []string{"PH"}) {
		t.Errorf("top-tracks countries = %v, want [PH]", countries)
	}
}

func TestSearchArtists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Bill Evans" || q.Get("type") != "artist" || q.Get("limit") != "1" {
			t.Errorf("query = %v", q)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"artists": map[string]any{"items": []map[string]any{
				{"id": "be", "name": "Bill Evans", "genres": []string{"jazz", "cool jazz"}},
			}},
		})
	}))

	artists, err := client.SearchArtists(context.Background(), "Bill Evans", 1)
	if err != nil {
		t.Fatalf("SearchArtists() error = %v", err)
	}
	if len(artists) != 1 || artists[0].ID != "be" || !slices.Equal(artists[0].Genres, []string{"jazz", "cool jazz"}) {
		t.Errorf("SearchArtists() = %+v", artists)
	}
}

func TestMergeTracks(t *testing.T) {
	a := []Track{{ID: "1"}, {ID: "2"}}
	b := []Track{{ID: "2"}, {ID: "3"}, {ID: "4"}}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"dedupes in order", 10, []string{"1", "2", "3", "4"}},
		{"caps at limit", 3, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, tr := range mergeTracks(tt.limit, a, b) {
				got = append(got, tr.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("mergeTracks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopArtists(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/top/artists" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("time_range"); got != "medium_term" {
			t.Errorf("time_range = %q, want medium_term", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": "a1", "name": "Nujabes", "genres": []string{"jazz hip hop"}},
				{"id": "a2", "name": "Bonobo"},
			},
		})
	}))

	artists, err := client.TopArtists(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopArtists() error = %v", err)
	}
	if len(artists) != 2 || artists[0].ID != "a1" || artists[0].Genres[0] != "jazz hip hop" {
		t.Errorf("TopArtists() = %+v", artists)
	}
	if artists[1].Genres == nil {
		t.Error("Genres should be non-nil")
	}
}

func TestCreatePlaylist(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me":
			writeJSON(t, w, http.StatusOK, map[string]any{"id": "user-1"})
		case r.Method == http.MethodPost && r.URL.Path == "/users/user-1/playlists":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "Rainy Day" || body["public"] != false {
				t.Errorf("body = %v", body)
			}
			writeJSON(t, w, http.StatusCreated, map[string]any{
				"id":            "pl-1",
				"name":          "Rainy Day",
				"external_urls": map[string]string{"spotify": "https://open.spotify.com/playlist/pl-1"},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	got, err := client.CreatePlaylist(context.Background(), "Rainy Day", "desc", false)
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	want := Playlist{ID: "pl-1", Name: "Rainy Day", URL: "https://open.spotify.com/playlist/pl-1"}
	if got != want {
		t.Errorf("CreatePlaylist() = %+v, want %+v", got, want)
	}
}

func TestAddTracksToPlaylist(t *testing.T) {
	var mu sync.Mutex
	var batchSizes []int
	var firstURI string

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl-1/tracks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			URIs []string `json:"uris"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		if firstURI == "" && len(body.URIs) > 0 {
			firstURI = body.URIs[0]
		}
		batchSizes = append(batchSizes, len(body.URIs))
		mu.Unlock()

		writeJSON(t, w, http.StatusCreated, map[string]string{"snapshot_id": "snap"})
	}))

	tracks := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		if i%2 == 0 {
			tracks = append(tracks, "spotify:track:id"+strings.Repeat("x", i%5))
		} else {
			tracks = append(tracks, "id")
		}
	}

	if err := client.AddTracksToPlaylist(context.Background(), "pl-1", tracks); err != nil {
		t.Fatalf("AddTracksToPlaylist() error = %v", err)
	}
	if !slices.Equal(batchSizes, []int{100, 100, 50}) {
		t.Errorf("batch sizes = %v, want [100 100 50]", batchSizes)
	}
	if firstURI != "spotify:track:id" {
		t.Errorf("first uri = %q, want spotify:track:id", firstURI)
	}
}

func TestAddTracksToPlaylistEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	if err := client.AddTracksToPlaylist(context.Background(), "pl-1", nil); err != nil {
		t.Errorf("AddTracksToPlaylist(nil) error = %v", err)
	}
}

func TestTrackIDAndURI(t *testing.T) {
	tests := []struct {
		in      string
		wantID  string
		wantURI string
	}{
		{"abc", "abc", "spotify:track:abc"},
		{"spotify:track:abc", "abc", "spotify:track:abc"},
		{" spotify:track:abc ", "abc", "spotify:track:abc"},
	}

	for _, tt := range tests {
		if got := TrackID(tt.in); got != tt.wantID {
			t.Errorf("TrackID(%q) = %q, want %q", tt.in, got, tt.wantID)
		}
		if got := TrackURI(tt.in); got != tt.wantURI {
			t.Errorf("TrackURI(%q) = %q, want %q", tt.in, got, tt.wantURI)
		}
	}
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  []batch
	}{
		{"empty", 0, nil},
		{"less than 100", 50, []batch{{0, 50}}},
		{"exactly 100", 100, []batch{{0, 100}}},
		{"more than 100", 250, []batch{{0, 100}, {100, 200}, {200, 250}}},
		{"exactly 200", 200, []batch{{0, 100}, {100, 200}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := batches(tt.total, maxTracksPerRequest); !slices.Equal(got, tt.want) {
				t.Errorf("batches(%d) = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}
