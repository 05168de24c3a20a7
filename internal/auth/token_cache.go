// Package auth provides Spotify OAuth2 authentication, a CLI token cache
// and signed bearer tokens for the web API.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

const (
	configDirName = "moodify"
	tokenFileName = "token.json"
)

// ErrCorruptTokenCache is returned by Load when the cache file cannot be decoded.
var ErrCorruptTokenCache = errors.New("corrupt token cache")

// cachedToken is the on-disk record. A token is only reused by the client
// registration that obtained it.
type cachedToken struct {
	ClientID string        `json:"client_id"`
	SavedAt  time.Time     `json:"saved_at"`
	Token    *oauth2.Token `json:"token"`
}

// TokenCache stores the CLI's OAuth token for one Spotify client ID.
type TokenCache struct {
	path     string
	clientID string
	now      func() time.Time
}

// DefaultTokenCachePath returns ~/.config/moodify/token.json (or the
// platform equivalent).
func DefaultTokenCachePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(configDir, configDirName, tokenFileName), nil
}

// NewTokenCache creates a cache at path for tokens issued to clientID.
func NewTokenCache(path, clientID string) *TokenCache {
	return &TokenCache{path: path, clientID: clientID, now: time.Now}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the cached token, or nil if there is none or it belongs to
// another client ID.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token cache: %w", err)
	}

	var rec cachedToken
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTokenCache, err)
	}
	if rec.Token == nil || rec.Token.AccessToken == "" || rec.ClientID != c.clientID {
		return nil, nil
	}
	return rec.Token, nil
}

// Save replaces the cached token. The file is written to a temporary name
// and renamed so a crash never leaves a partial token behind.
func (c *TokenCache) Save(token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cachedToken{
		ClientID: c.clientID,
		SavedAt:  c.now().UTC(),
		Token:    token,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing token cache: %w", err)
	}
	return nil
}

// Delete removes the cache file. A missing file is not an error.
func (c *TokenCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token cache: %w", err)
	}
	return nil
}
