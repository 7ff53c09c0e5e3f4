package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/service"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "vecino_session"

// SessionFromContext extracts the viewer session from the request context.
// Returns nil outside WithSession.
func SessionFromContext(ctx context.Context) *service.Session {
	s, _ := ctx.Value(sessionContextKey).(*service.Session)
	return s
}

// SessionBinder ties browsers to viewer sessions through a signed cookie.
type SessionBinder struct {
	sessions     *service.SessionManager
	tokens       *service.SessionTokens
	limiter      *service.TokenBucket
	cookieSecure bool
}

// NewSessionBinder creates a binder. A nil limiter never refuses new
// sessions.
func NewSessionBinder(sessions *service.SessionManager, tokens *service.SessionTokens, limiter *service.TokenBucket, cookieSecure bool) *SessionBinder {
	return &SessionBinder{sessions: sessions, tokens: tokens, limiter: limiter, cookieSecure: cookieSecure}
}

// WithSession is middleware that loads the caller's session from its cookie,
// or starts a new one on the Home view when the cookie is missing, invalid
// or names a session that no longer exists. Returns 429 when the client
// opens sessions too quickly.
func (b *SessionBinder) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := b.lookup(r)
		if err != nil {
			if b.limiter != nil && !b.limiter.Allow(clientIP(r)) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			s, err = b.start(w)
			if err != nil {
				slog.Error("start session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *SessionBinder) lookup(r *http.Request) (*service.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, domain.ErrNoSession
	}
	id, err := b.tokens.Verify(cookie.Value)
	if err != nil {
		return nil, err
	}
	return b.sessions.Get(id)
}

func (b *SessionBinder) start(w http.ResponseWriter) (*service.Session, error) {
	s := b.sessions.Create()
	token, err := b.tokens.Issue(s.ID)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   b.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets conservative response headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
