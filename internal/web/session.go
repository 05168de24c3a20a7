// Package web provides the HTTP API for Moodify.
package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-moodify/internal/db"
)

const (
	sessionCookieName = "session_id"
	stateCookieName   = "oauth_state"
	sessionTTL        = 30 * 24 * time.Hour
	stateTTL          = 5 * time.Minute
)

// Session represents an authenticated user session.
type Session struct {
	ID        string        `json:"id"`
	Token     *oauth2.Token `json:"token"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name"`
	CreatedAt time.Time     `json:"created_at"`
}

func (s *Session) expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > sessionTTL
}

// SessionManager defines the interface for session management.
type SessionManager interface {
	Create(ctx context.Context, token *oauth2.Token, userID, userName string) (*Session, error)
	// Get returns nil for a missing or expired session.
	Get(ctx context.Context, id string) *Session
	Delete(ctx context.Context, id string)
	UpdateToken(ctx context.Context, id string, token *oauth2.Token)
}

// ============================================================================
// In-Memory Session Store (for development/testing)
// ============================================================================

// SessionStore manages user sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create generates a new session with the given token and user info.
func (s *SessionStore) Create(_ context.Context, token *oauth2.Token, userID, userName string) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		Token:     token,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by ID. Expired sessions are evicted.
func (s *SessionStore) Get(_ context.Context, id string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if session.expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil
	}

	copied := *session
	return &copied
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// UpdateToken updates the OAuth token for a session.
func (s *SessionStore) UpdateToken(_ context.Context, id string, token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.Token = token
	}
}

// ============================================================================
// Database-Backed Session Store
// ============================================================================

// sessionRepository is the part of db.SessionRepository the store uses.
type sessionRepository interface {
	Create(ctx context.Context, s *db.Session) error
	Get(ctx context.Context, id string) (*db.Session, error)
	Delete(ctx context.Context, id string) error
	UpdateToken(ctx context.Context, id string, token *oauth2.Token) error
}

// DBSessionStore manages user sessions in PostgreSQL.
type DBSessionStore struct {
	repo   sessionRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewDBSessionStore creates a new database-backed session store.
func NewDBSessionStore(database *db.DB, logger zerolog.Logger) *DBSessionStore {
	return newDBSessionStore(database.Sessions(), logger)
}

func newDBSessionStore(repo sessionRepository, logger zerolog.Logger) *DBSessionStore {
	return &DBSessionStore{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "sessions").Logger(),
	}
}

// Create generates a new session and stores it in the database.
func (s *DBSessionStore) Create(ctx context.Context, token *oauth2.Token, userID, userName string) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	row := db.NewSession(id, userID, userName, token, s.now(), sessionTTL)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	return fromDBSession(row), nil
}

// Get retrieves an unexpired session by ID from the database.
func (s *DBSessionStore) Get(ctx context.Context, id string) *Session {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("reading session")
		}
		return nil
	}
	return fromDBSession(row)
}

// Delete removes a session from the database.
func (s *DBSessionStore) Delete(ctx context.Context, id string) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Msg("deleting session")
	}
}

// UpdateToken stores a refreshed OAuth token for a session.
func (s *DBSessionStore) UpdateToken(ctx context.Context, id string, token *oauth2.Token) {
	if err := s.repo.UpdateToken(ctx, id, token); err != nil {
		s.logger.Warn().Err(err).Msg("updating session token")
	}
}

func fromDBSession(row *db.Session) *Session {
	return &Session{
		ID:        row.ID,
		Token:     row.OAuthToken(),
		UserID:    row.UserID,
		UserName:  row.UserName,
		CreatedAt: row.CreatedAt,
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateSessionID creates a cryptographically random session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// setSessionCookie sets the session cookie on the response.
func setSessionCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// clearCookie expires the named cookie.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Ensure the stores implement SessionManager.
var (
	_ SessionManager = (*SessionStore)(nil)
	_ SessionManager = (*DBSessionStore)(nil)
	_ SessionManager = (*RedisSessionStore)(nil)
)
