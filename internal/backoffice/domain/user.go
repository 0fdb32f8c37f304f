package domain

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleClient     Role = "client"
)

// Scopes granted to access tokens.
const (
	ScopeRead   = "backoffice:read"
	ScopeWrite  = "backoffice:write"
	ScopeAdmin  = "admin"
	ScopePortal = "portal"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleClient:
		return true
	}
	return false
}

// Scopes returns the token scopes for r.
func (r Role) Scopes() []string {
	switch r {
	case RoleAdmin:
		return []string{ScopeRead, ScopeWrite, ScopeAdmin}
	case RoleAccountant:
		return []string{ScopeRead, ScopeWrite}
	case RoleClient:
		return []string{ScopePortal}
	}
	return nil
}

// IsStaff reports whether r works inside the firm.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAccountant
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ClientID     string     `json:"client_id,omitempty"`
	MFASecret    string     `json:"-"` // sealed TOTP seed
	MFAEnabledAt *time.Time `json:"mfa_enabled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MFAEnabled reports whether a confirmed TOTP seed is on file.
func (u User) MFAEnabled() bool {
	return u.MFAEnabledAt != nil
}

// RefreshToken is the stored form of an opaque refresh token.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the token
	SessionID string // stable across rotations
	AMR       []string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// TokenPair is the login and refresh response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	Scope        string `json:"scope"`
}

// MFAEnrollment is returned once when a user starts TOTP enrolment.
type MFAEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}
