package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// SessionTokens signs and verifies the cookie that binds a browser to its
// viewer session.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokens creates a signer using HMAC-SHA256. A zero ttl issues
// tokens without expiry.
func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token carrying the session id.
func (t *SessionTokens) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and returns the session id.
func (t *SessionTokens) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrNoSession
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrNoSession
	}
	return sub, nil
}
