package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "escritorio-backoffice"}}

	require.NoError(t, c.ValidateIssuer("escritorio-backoffice"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"backoffice", "portal"}}}

	require.NoError(t, c.ValidateAudience([]string{"portal"}))
	require.NoError(t, c.ValidateAudience([]string{"x", "backoffice"}))
	require.NoError(t, c.ValidateAudience(nil))
	require.ErrorIs(t, c.ValidateAudience([]string{"admin"}), jwtx.ErrAudience)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		c := jwtx.NewAccessClaims(jwtx.AccessParams{Subject: "u"}, time.Minute, "iss", nil, now)
		require.NoError(t, c.ValidateExpiry())
	})

	t.Run("expired", func(t *testing.T) {
		c := jwtx.NewAccessClaims(jwtx.AccessParams{Subject: "u"}, time.Minute, "iss", nil, now.Add(-2*time.Minute))
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
		require.NoError(t, c.ValidateExpiryWithLeeway(2*time.Minute))
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewAccessClaims(jwtx.AccessParams{Subject: "u"}, time.Minute, "iss", nil, now.Add(30*time.Second))
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
	})
}

func TestNewAccessClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewAccessClaims(jwtx.AccessParams{
		Subject:   "01USER",
		SessionID: "01SESSION",
		Scopes:    []string{"portal"},
		AMR:       []string{"pwd", "otp", "mfa"},
		Username:  "cliente",
		Role:      "client",
		ClientID:  "01CLIENT",
	}, 15*time.Minute, "iss", []string{"backoffice"}, now)

	require.Equal(t, "01USER", c.Subject)
	require.Equal(t, "01SESSION", c.SID)
	require.Equal(t, "client", c.Role)
	require.Equal(t, "01CLIENT", c.ClientID)
	require.Equal(t, now.Add(15*time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
	require.NotEqual(t, c.ID, jwtx.NewJTI())
}
