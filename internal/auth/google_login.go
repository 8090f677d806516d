package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/snacksync/snacksync-api/internal/config"
	"github.com/snacksync/snacksync-api/internal/services"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Scopes requested from Google during login. youtube.readonly is what the
// activity fetch later depends on.
var googleScopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/youtube.readonly",
}

var (
	// ErrLoginNotConfigured: the Google client identity or redirect URI is
	// missing from configuration; the login endpoint is unavailable.
	ErrLoginNotConfigured = errors.New("google_login_not_configured")
	// ErrExchangeFailed: Google rejected the authorization code.
	ErrExchangeFailed = errors.New("code_exchange_failed")
	// ErrInvalidIDToken: the token bundle came back without a verifiable
	// identity.
	ErrInvalidIDToken = errors.New("invalid_id_token")
)

// codeExchanger is the slice of oauth2.Config the login flow uses, kept as an
// interface so tests can fake the token endpoint.
type codeExchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// idTokenVerifier validates an ID token against an audience and returns its
// payload.
type idTokenVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// LoginResult identifies the authenticated user.
type LoginResult struct {
	GoogleID string
	Email    string
}

// LoginService exchanges Google authorization codes for credential bundles
// and persists them encrypted.
type LoginService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	exchanger    codeExchanger
	verify       idTokenVerifier
	credentials  services.CredentialService
}

// NewLoginService wires the Google OAuth client from configuration
func NewLoginService(cfg *config.Config, credentials services.CredentialService) *LoginService {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       googleScopes,
		Endpoint:     google.Endpoint,
	}
	return &LoginService{
		clientID:     cfg.GoogleClientID,
		clientSecret: cfg.GoogleClientSecret,
		redirectURI:  cfg.GoogleRedirectURI,
		exchanger:    oauthConfig,
		verify:       idtoken.Validate,
		credentials:  credentials,
	}
}

// LoginWithCode exchanges the authorization code, verifies the user's
// identity, and stores the credential bundle (full replace) for that user.
func (s *LoginService) LoginWithCode(ctx context.Context, code string) (*LoginResult, error) {
	if s.clientID == "" || s.redirectURI == "" {
		return nil, ErrLoginNotConfigured
	}

	token, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		log.WithError(err).Warn("Authorization code exchange failed")
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: token response carried no id_token", ErrInvalidIDToken)
	}

	payload, err := s.verify(ctx, rawIDToken, s.clientID)
	if err != nil {
		log.WithError(err).Warn("ID token verification failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	googleID := payload.Subject
	email, _ := payload.Claims["email"].(string)

	bundle := services.CredentialBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURI:     google.Endpoint.TokenURL,
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Scopes:       googleScopes,
	}
	if _, err := s.credentials.UpsertCredentials(googleID, bundle); err != nil {
		return nil, fmt.Errorf("storing credentials: %w", err)
	}

	log.WithField("google_id", googleID).Info("User authenticated with Google")
	return &LoginResult{GoogleID: googleID, Email: email}, nil
}
