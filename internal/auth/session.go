package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_token"

// ErrInvalidSession is returned for any session token that does not verify:
// bad signature, expired, or missing the subject claim.
var ErrInvalidSession = errors.New("invalid_session")

// SessionManager issues and verifies the signed session tokens that identify
// a logged-in user by Google ID.
type SessionManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewSessionManager validates the signing configuration once at startup.
// Only HMAC algorithms are supported; the signing key is a shared secret.
func NewSessionManager(secret, algorithm string, ttl time.Duration) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("session signing key is required")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s (HMAC only)", algorithm)
	}
	return &SessionManager{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session token for the given Google ID.
func (m *SessionManager) Issue(googleID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   googleID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Verify parses and validates a session token and returns the Google ID it
// identifies.
func (m *SessionManager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method to prevent algorithm confusion attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidSession
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidSession
	}
	return subject, nil
}
