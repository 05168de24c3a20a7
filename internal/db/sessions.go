package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

// SessionRepository stores login sessions together with the user's
// Spotify OAuth token.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSession builds a session row for a freshly issued token. The session
// expires ttl after now.
func NewSession(id, userID, userName string, token *oauth2.Token, now time.Time, ttl time.Duration) *Session {
	s := &Session{
		ID:        id,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if token != nil {
		s.AccessToken = token.AccessToken
		s.RefreshToken = token.RefreshToken
		s.TokenExpiry = token.Expiry
	}
	return s
}

// OAuthToken returns the stored credentials as an oauth2 token.
func (s *Session) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.TokenExpiry,
		TokenType:    "Bearer",
	}
}

// Create inserts a session. The user row must already exist.
func (r *SessionRepository) Create(ctx context.Context, s *Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, access_token, refresh_token, token_expiry, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.TokenExpiry, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", s.UserID, err)
	}
	return nil
}

// Get returns an unexpired session with its user's display name, or
// ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, COALESCE(u.display_name, ''),
		       s.access_token, s.refresh_token, s.token_expiry, s.created_at, s.expires_at
		FROM sessions s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.id = $1 AND s.expires_at > NOW()`, id,
	).Scan(
		&s.ID, &s.UserID, &s.UserName,
		&s.AccessToken, &s.RefreshToken, &s.TokenExpiry, &s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// UpdateToken stores a refreshed OAuth token. An empty refresh token keeps
// the stored one, since Spotify does not always rotate it.
func (r *SessionRepository) UpdateToken(ctx context.Context, id string, token *oauth2.Token) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET access_token = $2,
		    refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
		    token_expiry = $4
		WHERE id = $1`,
		id, token.AccessToken, token.RefreshToken, token.Expiry,
	)
	if err != nil {
		return fmt.Errorf("updating session token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired prunes expired sessions and reports how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
