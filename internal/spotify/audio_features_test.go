package spotify

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/justestif/go-spotify-moodify/internal/clustering"
)

func TestAudioFeatures(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio-features" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != "t1,t2" {
			t.Errorf("ids = %q, want t1,t2", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"audio_features":[{"id":"t1","energy":0.8,"valence":0.6,"danceability":0.7,"tempo":120},null]}`))
	}))

	got, err := client.AudioFeatures(context.Background(), []string{"spotify:track:t1", "t2"})
	if err != nil {
		t.Fatalf("AudioFeatures() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d features, want 1", len(got))
	}
	want := clustering.Features{Energy: 0.8, Valence: 0.6, Danceability: 0.7}
	if got["t1"] != want {
		t.Errorf("features[t1] = %+v, want %+v", got["t1"], want)
	}
}

func TestAudioFeaturesBatches(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if n := len(strings.Split(r.URL.Query().Get("ids"), ",")); n > maxTracksPerRequest {
			t.Errorf("batch of %d ids exceeds limit", n)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"audio_features":[]}`))
	}))

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = "id"
	}
	if _, err := client.AudioFeatures(context.Background(), ids); err != nil {
		t.Fatalf("AudioFeatures() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestAudioFeaturesEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	got, err := client.AudioFeatures(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("AudioFeatures(nil) = %v, %v", got, err)
	}
}
