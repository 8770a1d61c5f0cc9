package services

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hospoda/shiftboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleService(t *testing.T) (*GoogleOAuthService, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	verifier := oidc.NewVerifier(googleIssuer, keySet, &oidc.Config{ClientID: "client-id"})

	cfg := config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/auth/google/callback",
	}
	return newGoogleOAuthService(cfg, verifier), key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestNewGoogleOAuthServiceDisabled(t *testing.T) {
	_, err := NewGoogleOAuthService(context.Background(), config.GoogleConfig{})
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}

func TestGoogleAuthCodeURL(t *testing.T) {
	svc, _ := newTestGoogleService(t)

	state, err := GenerateState()
	require.NoError(t, err)
	other, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, state, other)

	parsed, err := url.Parse(svc.AuthCodeURL(state))
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestGoogleVerifyIDToken(t *testing.T) {
	svc, key := newTestGoogleService(t)
	now := time.Now()

	t.Run("accepts a token signed by the key set", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{
			"iss":            googleIssuer,
			"aud":            "client-id",
			"sub":            "google-123",
			"email":          "pepa@gmail.com",
			"email_verified": true,
			"name":           "Pepa Novák",
			"iat":            now.Unix(),
			"exp":            now.Add(time.Hour).Unix(),
		})

		profile, err := svc.verify(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "google-123", profile.Subject)
		assert.Equal(t, "pepa@gmail.com", profile.Email)
		assert.True(t, profile.EmailVerified)
		assert.Equal(t, "Pepa Novák", profile.Name)
	})

	t.Run("rejects a token for another client", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{
			"iss": googleIssuer,
			"aud": "someone-else",
			"sub": "google-123",
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		_, err := svc.verify(context.Background(), raw)
		assert.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		raw := signIDToken(t, key, jwt.MapClaims{
			"iss": googleIssuer,
			"aud": "client-id",
			"sub": "google-123",
			"iat": now.Add(-2 * time.Hour).Unix(),
			"exp": now.Add(-time.Hour).Unix(),
		})
		_, err := svc.verify(context.Background(), raw)
		assert.Error(t, err)
	})
}
