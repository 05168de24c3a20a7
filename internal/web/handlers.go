package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-moodify/internal/auth"
	"github.com/justestif/go-spotify-moodify/internal/db"
	"github.com/justestif/go-spotify-moodify/internal/moods"
	"github.com/justestif/go-spotify-moodify/internal/playlist"
	"github.com/justestif/go-spotify-moodify/internal/sentiment"
	"github.com/justestif/go-spotify-moodify/internal/spotify"
)

const (
	sentimentEchoLimit = 100
	internalErrorText  = "Internal server error"
)

// SpotifyClient is the per-user streaming provider client.
type SpotifyClient interface {
	playlist.Catalog
	CurrentUser(ctx context.Context) (spotify.Profile, error)
	Token() (*oauth2.Token, error)
}

// ClientFactory builds a provider client for a user's token.
type ClientFactory func(ctx context.Context, token *oauth2.Token) SpotifyClient

// UserStore persists user profiles.
type UserStore interface {
	Get(ctx context.Context, id string) (*db.User, error)
	Upsert(ctx context.Context, user *db.User) error
}

// PreferencesStore persists listening preferences.
type PreferencesStore interface {
	Get(ctx context.Context, userID string) (*db.Preferences, error)
	Upsert(ctx context.Context, userID string, update db.PreferencesUpdate) (*db.Preferences, error)
}

// HistoryStore persists listening history.
type HistoryStore interface {
	Add(ctx context.Context, e *db.HistoryEntry) error
	ListForUser(ctx context.Context, userID string, limit int) ([]db.HistoryEntry, error)
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth      auth.Provider
	sessions  SessionManager
	users     UserStore
	prefs     PreferencesStore
	history   HistoryStore
	playlists *playlist.Service
	resolver  *moods.Resolver
	newClient ClientFactory
	secret    []byte
	clientURL string
	logger    zerolog.Logger
}

// ============================================================================
// Auth
// ============================================================================

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.internalError(w, err, "generating oauth state")
		return
	}

	// Validated on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback). Every
// outcome redirects back to the client application.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, stateCookieName)

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.logger.Warn().Str("error", errMsg).Msg("spotify denied authorization")
		h.redirectError(w, r, errMsg)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || state != stateCookie.Value {
		h.logger.Warn().Err(auth.ErrStateMismatch).Msg("oauth callback rejected")
		h.redirectError(w, r, "auth_failed")
		return
	}

	session, err := h.completeLogin(r, state)
	if err != nil {
		h.logger.Error().Err(err).Msg("oauth callback failed")
		h.redirectError(w, r, "auth_failed")
		return
	}

	setSessionCookie(w, session)
	http.Redirect(w, r, h.clientURL+"/dashboard", http.StatusFound)
}

func (h *Handlers) completeLogin(r *http.Request, state string) (*Session, error) {
	ctx := r.Context()

	token, err := h.auth.Token(ctx, state, r)
	if err != nil {
		return nil, err
	}

	client := h.newClient(ctx, token)
	profile, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if h.users != nil {
		user := &db.User{
			ID:          profile.ID,
			DisplayName: profile.DisplayName,
			Email:       profile.Email,
		}
		if profile.ImageURL != "" {
			user.ImageURL = &profile.ImageURL
		}
		if err := h.users.Upsert(ctx, user); err != nil {
			return nil, err
		}
	}

	return h.sessions.Create(ctx, token, profile.ID, profile.DisplayName)
}

func (h *Handlers) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.clientURL+"?error="+url.QueryEscape(code), http.StatusFound)
}

// CurrentUser returns the authenticated user's profile (GET /api/auth/user).
func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	if h.users == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"id":          session.UserID,
			"displayName": session.UserName,
		})
		return
	}

	user, err := h.users.Get(r.Context(), session.UserID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.internalError(w, err, "loading user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// IssueToken returns a bearer token for the current session (GET /api/auth/token).
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	token, err := auth.Issue(h.secret, auth.Claims{SessionID: session.ID, UserID: session.UserID}, sessionTTL)
	if err != nil {
		h.internalError(w, err, "issuing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"tokenType": "Bearer",
		"expiresIn": int(sessionTTL.Seconds()),
	})
}

// Logout clears the session (POST /api/auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessionFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}
	clearCookie(w, sessionCookieName)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// ============================================================================
// Mood
// ============================================================================

// Analyze resolves mood inputs into target attributes (POST /api/mood/analyze).
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var in moods.Input
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(in.Mood) == "" {
		writeError(w, http.StatusBadRequest, "Mood is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": h.resolver.Resolve(r.Context(), in),
	})
}

// Sentiment scores text with the word lists (POST /api/mood/sentiment).
func (h *Handlers) Sentiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	score := sentiment.Lexicon(req.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"sentiment": sentiment.Classify(score),
		"score":     score,
		"text":      truncateRunes(req.Text, sentimentEchoLimit),
	})
}

// Moods lists the known moods (GET /api/mood/moods).
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"moods": moods.Moods()})
}

// Hobbies lists the known hobbies (GET /api/mood/hobbies).
func (h *Handlers) Hobbies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"hobbies": moods.Hobbies()})
}

// ============================================================================
// Playlists
// ============================================================================

// GeneratePlaylist previews tracks for a mood (POST /api/playlist/generate).
func (h *Handlers) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlist.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := sessionFromContext(r.Context())
	client, done := h.spotifyClient(r.Context(), session)
	defer done()

	preview, err := h.playlists.Generate(r.Context(), client, session.UserID, req)
	if err != nil {
		h.playlistError(w, err, "generating playlist")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*playlist.Preview
	}{true, preview})
}

// CreatePlaylist saves tracks to the user's account (POST /api/playlist/create).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlist.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := sessionFromContext(r.Context())
	client, done := h.spotifyClient(r.Context(), session)
	defer done()

	created, err := h.playlists.Create(r.Context(), client, session.UserID, req)
	if err != nil {
		h.playlistError(w, err, "creating playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"playlist": created,
	})
}

// PlaylistHistory lists the user's playlists (GET /api/playlist/history).
func (h *Handlers) PlaylistHistory(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	playlists, err := h.playlists.History(r.Context(), session.UserID)
	if err != nil {
		h.internalError(w, err, "listing playlists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// GetPlaylist returns one of the user's playlists (GET /api/playlist/{id}).
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	p, err := h.playlists.Get(r.Context(), session.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.playlistError(w, err, "loading playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlist": p})
}

func (h *Handlers) playlistError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, playlist.ErrMissingMood):
		writeError(w, http.StatusBadRequest, "Mood is required")
	case errors.Is(err, playlist.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "Name and tracks are required")
	case errors.Is(err, playlist.ErrNotFound):
		writeError(w, http.StatusNotFound, "Playlist not found")
	default:
		h.internalError(w, err, action)
	}
}

// spotifyClient builds the session's provider client. The returned func
// writes a refreshed token back to the session store.
func (h *Handlers) spotifyClient(ctx context.Context, session *Session) (SpotifyClient, func()) {
	client := h.newClient(ctx, session.Token)
	return client, func() {
		token, err := client.Token()
		if err != nil || token == nil {
			return
		}
		if session.Token == nil || token.AccessToken != session.Token.AccessToken {
			h.sessions.UpdateToken(context.WithoutCancel(ctx), session.ID, token)
		}
	}
}

// ============================================================================
// Preferences and listening history
// ============================================================================

// GetPreferences returns the user's preferences or null (GET /api/preferences).
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	prefs, err := h.prefs.Get(r.Context(), session.UserID)
	if errors.Is(err, db.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"preferences": nil})
		return
	}
	if err != nil {
		h.internalError(w, err, "loading preferences")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

// SavePreferences creates or merges preferences (POST /api/preferences) and
// echoes the result.
func (h *Handlers) SavePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, ok := h.upsertPreferences(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"preferences": prefs,
	})
}

// UpdatePreferences merges preferences (PUT /api/preferences).
func (h *Handlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.upsertPreferences(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Preferences updated",
	})
}

func (h *Handlers) upsertPreferences(w http.ResponseWriter, r *http.Request) (*db.Preferences, bool) {
	var update db.PreferencesUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	session := sessionFromContext(r.Context())
	prefs, err := h.prefs.Upsert(r.Context(), session.UserID, update)
	if err != nil {
		h.internalError(w, err, "saving preferences")
		return nil, false
	}
	return prefs, true
}

// ListHistory returns recent listening history (GET /api/history).
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	entries, err := h.history.ListForUser(r.Context(), session.UserID, 0)
	if err != nil {
		h.internalError(w, err, "listing history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// AddHistory records a listened track (POST /api/history).
func (h *Handlers) AddHistory(w http.ResponseWriter, r *http.Request) {
	var entry db.HistoryEntry
	if err := decodeJSON(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(entry.TrackID) == "" {
		writeError(w, http.StatusBadRequest, "Track ID is required")
		return
	}

	session := sessionFromContext(r.Context())
	entry.ID = 0
	entry.UserID = session.UserID
	if err := h.history.Add(r.Context(), &entry); err != nil {
		h.internalError(w, err, "recording history")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"entry":   entry,
	})
}

// requireStore answers 503 when the route's backing store is not configured.
func requireStore(configured bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !configured {
				writeError(w, http.StatusServiceUnavailable, "Database not configured")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Misc
// ============================================================================

// Health reports liveness (GET /api/health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Moodify API is running",
	})
}

func (h *Handlers) internalError(w http.ResponseWriter, err error, action string) {
	h.logger.Error().Err(err).Msg(action)
	writeError(w, http.StatusInternalServerError, internalErrorText)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
