package db

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       now.Add(time.Hour),
	}

	s := NewSession("sid", "u1", "Ada", token, now, 30*24*time.Hour)

	if s.ID != "sid" || s.UserID != "u1" || s.UserName != "Ada" {
		t.Errorf("identity = {%q, %q, %q}", s.ID, s.UserID, s.UserName)
	}
	if s.AccessToken != "access" || s.RefreshToken != "refresh" || !s.TokenExpiry.Equal(token.Expiry) {
		t.Errorf("token fields = {%q, %q, %v}", s.AccessToken, s.RefreshToken, s.TokenExpiry)
	}
	if !s.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, now)
	}
	if want := now.Add(30 * 24 * time.Hour); !s.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, want)
	}
}

func TestNewSession_NilToken(t *testing.T) {
	s := NewSession("sid", "u1", "", nil, time.Now(), time.Hour)
	if s.AccessToken != "" || s.RefreshToken != "" || !s.TokenExpiry.IsZero() {
		t.Errorf("nil token produced credentials: %+v", s)
	}
}

func TestSession_OAuthToken(t *testing.T) {
	expiry := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := &Session{AccessToken: "access", RefreshToken: "refresh", TokenExpiry: expiry}

	tok := s.OAuthToken()

	if tok.AccessToken != "access" || tok.RefreshToken != "refresh" || !tok.Expiry.Equal(expiry) {
		t.Errorf("OAuthToken() = %+v", tok)
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", tok.TokenType)
	}
}

func TestSession_TokenRoundTrip(t *testing.T) {
	in := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Unix(1700000000, 0)}
	out := NewSession("sid", "u1", "", in, time.Now(), time.Hour).OAuthToken()

	if out.AccessToken != in.AccessToken || out.RefreshToken != in.RefreshToken || !out.Expiry.Equal(in.Expiry) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
