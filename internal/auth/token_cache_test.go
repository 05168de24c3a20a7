package auth

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	cache := NewTokenCache(path, "client-a")
	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return saved }

	token := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       saved.Add(time.Hour),
	}
	if err := cache.Save(token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil || loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Fatalf("Load() = %+v, want the saved token", loaded)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec cachedToken
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("cache file is not a cachedToken: %v", err)
	}
	if rec.ClientID != "client-a" || !rec.SavedAt.Equal(saved) {
		t.Errorf("record = {%q, %v}, want {client-a, %v}", rec.ClientID, rec.SavedAt, saved)
	}
}

func TestTokenCache_Load(t *testing.T) {
	tests := []struct {
		name     string
		contents string // empty means no file
		wantTok  string
		wantErr  error
	}{
		{name: "missing file"},
		{
			name:     "matching client",
			contents: `{"client_id":"client-a","token":{"access_token":"tok"}}`,
			wantTok:  "tok",
		},
		{
			name:     "other client",
			contents: `{"client_id":"client-b","token":{"access_token":"tok"}}`,
		},
		{
			name:     "no token",
			contents: `{"client_id":"client-a"}`,
		},
		{
			name:     "bare oauth2 token from an older cache",
			contents: `{"access_token":"tok","token_type":"Bearer"}`,
		},
		{
			name:     "garbage",
			contents: `not json`,
			wantErr:  ErrCorruptTokenCache,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			if tt.contents != "" {
				if err := os.WriteFile(path, []byte(tt.contents), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			got, err := NewTokenCache(path, "client-a").Load()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			var gotTok string
			if got != nil {
				gotTok = got.AccessToken
			}
			if gotTok != tt.wantTok {
				t.Errorf("Load() access token = %q, want %q", gotTok, tt.wantTok)
			}
		})
	}
}

func TestTokenCache_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.json")
	cache := NewTokenCache(path, "client-a")

	for _, access := range []string{"first", "second"} {
		if err := cache.Save(&oauth2.Token{AccessToken: access}); err != nil {
			t.Fatalf("Save(%s) error = %v", access, err)
		}
	}

	got, err := cache.Load()
	if err != nil || got == nil || got.AccessToken != "second" {
		t.Fatalf("Load() = %+v, %v; want second token", got, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir holds %d entries, want only token.json", len(entries))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		t.Errorf("permissions = %o, want no group/other access", mode)
	}
}

func TestTokenCache_SaveNil(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"), "client-a")
	if err := cache.Save(nil); err == nil {
		t.Error("Save(nil) returned nil error")
	}
}

func TestTokenCache_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cache := NewTokenCache(path, "client-a")

	if err := cache.Delete(); err != nil {
		t.Errorf("Delete() on missing file error = %v", err)
	}
	if err := cache.Save(&oauth2.Token{AccessToken: "tok"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Delete() left the cache file behind")
	}
}
