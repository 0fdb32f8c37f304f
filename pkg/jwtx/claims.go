package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Authentication Methods Reference values.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
	AMRMFA      = "mfa"
	AMRRefresh  = "refresh"
)

// Claims are the access token claims issued by the back office.
type Claims struct {
	jwt.RegisteredClaims

	// Session (refresh token family) the token was minted for.
	SID string `json:"sid,omitempty"`

	Scopes []string `json:"scopes,omitempty"`

	// Authentication Methods Reference: "pwd", "otp", "mfa".
	AMR []string `json:"amr,omitempty"`

	Username      string `json:"username,omitempty"`
	PreferredName string `json:"preferred_name,omitempty"`

	// Role is one of admin, accountant or client.
	Role string `json:"role,omitempty"`

	// ClientID binds a portal user to the client record they may see.
	ClientID string `json:"client_id,omitempty"`
}

// AccessParams is the user facing part of an access token.
type AccessParams struct {
	Subject       string
	SessionID     string
	Scopes        []string
	AMR           []string
	Username      string
	PreferredName string
	Role          string
	ClientID      string
}

// NewAccessClaims builds claims valid from now for ttl.
func NewAccessClaims(p AccessParams, ttl time.Duration, issuer string, audience []string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:           p.SessionID,
		Scopes:        p.Scopes,
		AMR:           p.AMR,
		Username:      p.Username,
		PreferredName: p.PreferredName,
		Role:          p.Role,
		ClientID:      p.ClientID,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
