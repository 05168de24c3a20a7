package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const callbackTimeout = 2 * time.Minute

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client ID or secret")

	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Scopes are the permissions requested from the user.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadRecentlyPlayed,
}

// Provider is the subset of the Spotify OAuth authenticator used by the CLI
// flow and the web server.
type Provider interface {
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
	Token(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Client(ctx context.Context, token *oauth2.Token) *http.Client
}

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// CachePath overrides the default token cache location.
	CachePath string
}

// NewProvider builds the Spotify OAuth authenticator with Moodify's scopes.
func NewProvider(cfg Config) (*spotifyauth.Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(Scopes...),
	), nil
}

// Authenticator runs the loopback OAuth flow for command line use and
// caches the resulting token on disk.
type Authenticator struct {
	auth        Provider
	cache       *TokenCache
	redirectURI string
	out         io.Writer
	logger      zerolog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithOutput sets where login instructions are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *Authenticator) {
		a.out = w
	}
}

// WithLogger sets the authenticator's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger.With().Str("component", "auth").Logger()
	}
}

// New creates an Authenticator. Returns ErrMissingCredentials if the client
// ID or secret is empty.
func New(cfg Config, opts ...Option) (*Authenticator, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	path := cfg.CachePath
	if path == "" {
		path, err = DefaultTokenCachePath()
		if err != nil {
			return nil, fmt.Errorf("creating token cache: %w", err)
		}
	}
	cache := NewTokenCache(path, cfg.ClientID)

	a := &Authenticator{
		auth:        provider,
		cache:       cache,
		redirectURI: cfg.RedirectURI,
		out:         os.Stdout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate returns an authenticated Spotify client.
// It first checks for a cached token and uses it if valid/refreshable.
// Otherwise, it runs the full OAuth flow.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	token, err := a.cache.Load()
	switch {
	case errors.Is(err, ErrCorruptTokenCache):
		a.logger.Warn().Err(err).Str("path", a.cache.Path()).Msg("ignoring unreadable token cache")
		token = nil
	case err != nil:
		return nil, fmt.Errorf("loading cached token: %w", err)
	}

	if token != nil {
		// oauth2 refreshes the token transparently if it has expired
		client := spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true))

		_, err := client.CurrentUser(ctx)
		if err == nil {
			newToken, tokenErr := client.Token()
			if tokenErr == nil && newToken.AccessToken != token.AccessToken {
				if err := a.cache.Save(newToken); err != nil {
					a.logger.Warn().Err(err).Msg("failed to cache refreshed token")
				}
			}
			return client, nil
		}

		a.logger.Info().Err(err).Msg("cached token invalid, starting new authentication")
	}

	return a.runOAuthFlow(ctx)
}

// runOAuthFlow performs the full OAuth authorization code flow.
func (a *Authenticator) runOAuthFlow(ctx context.Context) (*spotify.Client, error) {
	addr, path, err := loopbackAddr(a.redirectURI)
	if err != nil {
		return nil, err
	}

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, state, tokenCh, errCh)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	fmt.Fprintln(a.out, "\nTo authenticate, open this URL in your browser:")
	fmt.Fprintln(a.out, a.auth.AuthURL(state))
	fmt.Fprintln(a.out, "\nWaiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		_ = server.Shutdown(ctx)
		return nil, err
	case <-time.After(callbackTimeout):
		_ = server.Shutdown(ctx)
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	// auth succeeded even if caching fails
	if err := a.cache.Save(token); err != nil {
		a.logger.Warn().Err(err).Str("path", a.cache.Path()).Msg("failed to cache token")
	}

	return spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true)), nil
}

// handleCallback processes the OAuth callback from Spotify.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		errCh <- ErrStateMismatch
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		errCh <- fmt.Errorf("spotify auth error: %s", errMsg)
		return
	}

	token, err := a.auth.Token(r.Context(), expectedState, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		errCh <- fmt.Errorf("exchanging code for token: %w", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Moodify</title></head>
<body>
<h1>Authentication Successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	tokenCh <- token
}

// loopbackAddr derives the local listen address and callback path from the
// redirect URI. Spotify requires an explicit loopback IP for local redirects.
func loopbackAddr(redirectURI string) (addr, path string, err error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("parsing redirect URI: %w", err)
	}
	if u.Scheme != "http" || u.Hostname() == "" {
		return "", "", fmt.Errorf("redirect URI %q is not a local http URL", redirectURI)
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return u.Hostname() + ":" + port, path, nil
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	return generateState()
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	return a.cache.Delete()
}
