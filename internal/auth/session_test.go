package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-jwt-secret-key-32-characters"

func newTestSessionManager(t *testing.T, ttl time.Duration) *SessionManager {
	manager, err := NewSessionManager(testSigningKey, "HS256", ttl)
	require.NoError(t, err)
	return manager
}

func TestNewSessionManagerValidation(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		wantErr   bool
	}{
		{"valid HS256", testSigningKey, "HS256", false},
		{"valid HS512", testSigningKey, "HS512", false},
		{"empty secret", "", "HS256", true},
		{"unknown algorithm", testSigningKey, "XX999", true},
		{"asymmetric algorithm rejected", testSigningKey, "RS256", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSessionManager(tt.secret, tt.algorithm, time.Hour)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	manager := newTestSessionManager(t, time.Hour)

	token, err := manager.Issue("google-123", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	googleID, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "google-123", googleID)
}

func TestSessionVerifyRejectsGarbage(t *testing.T) {
	manager := newTestSessionManager(t, time.Hour)

	_, err := manager.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionVerifyRejectsWrongKey(t *testing.T) {
	manager := newTestSessionManager(t, time.Hour)

	other, err := NewSessionManager("a-different-signing-key-entirely!", "HS256", time.Hour)
	require.NoError(t, err)
	token, err := other.Issue("google-123", "user@example.com")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionVerifyRejectsExpiredToken(t *testing.T) {
	manager := newTestSessionManager(t, -time.Minute)

	token, err := manager.Issue("google-123", "user@example.com")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionVerifyRejectsMissingSubject(t *testing.T) {
	manager := newTestSessionManager(t, time.Hour)

	claims := jwt.MapClaims{
		"email": "user@example.com",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionVerifyRejectsUnsignedToken(t *testing.T) {
	manager := newTestSessionManager(t, time.Hour)

	claims := jwt.MapClaims{
		"sub": "google-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
