package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/justestif/go-spotify-moodify/internal/auth"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

// sessionFromContext returns the session attached by RequireSession.
func sessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKeySession).(*Session)
	return s
}

// requestLogger writes one zerolog line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// sessionFromRequest resolves the caller's session from the session cookie
// or, failing that, an Authorization bearer token.
func (h *Handlers) sessionFromRequest(r *http.Request) *Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if s := h.sessions.Get(r.Context(), cookie.Value); s != nil {
			return s
		}
	}

	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenStr == "" {
		return nil
	}
	claims, err := auth.Parse(h.secret, tokenStr)
	if err != nil {
		h.logger.Debug().Err(err).Msg("rejected bearer token")
		return nil
	}
	s := h.sessions.Get(r.Context(), claims.SessionID)
	if s == nil || s.UserID != claims.UserID {
		return nil
	}
	return s
}

// RequireSession rejects requests without a valid session with 401.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.sessionFromRequest(r)
		if session == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
