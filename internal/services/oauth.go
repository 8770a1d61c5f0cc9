package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hospoda/shiftboard/internal/config"
	"github.com/hospoda/shiftboard/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

var ErrGoogleDisabled = errors.New("google sign-in is not enabled")

// GoogleOAuthService runs the authorization code flow and verifies the
// returned ID token against Google's published keys.
type GoogleOAuthService struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewGoogleOAuthService(ctx context.Context, cfg config.GoogleConfig) (*GoogleOAuthService, error) {
	if !cfg.Enabled() {
		return nil, ErrGoogleDisabled
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed loading google discovery document: %w", err)
	}

	return newGoogleOAuthService(cfg, provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})), nil
}

func newGoogleOAuthService(cfg config.GoogleConfig, verifier *oidc.IDTokenVerifier) *GoogleOAuthService {
	return &GoogleOAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verifier: verifier,
	}
}

// GenerateState returns a random value to bind the callback to the browser
// that started the flow.
func GenerateState() (string, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(nonceBytes), nil
}

func (s *GoogleOAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for tokens and returns the verified
// claims of the ID token.
func (s *GoogleOAuthService) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Warn("oauth_exchange_failed", map[string]interface{}{
			"provider": "google",
			"error":    err.Error(),
		})
		return nil, errors.New("failed to exchange code for token")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response has no id_token")
	}

	return s.verify(ctx, rawIDToken)
}

func (s *GoogleOAuthService) verify(ctx context.Context, rawIDToken string) (*GoogleProfile, error) {
	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("invalid id_token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}

	return &GoogleProfile{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
