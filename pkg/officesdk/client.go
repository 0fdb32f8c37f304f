package officesdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the back office API. It performs the unauthenticated
// calls and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckScopes makes a Session refuse calls its token has no scope for
	// without contacting the server. Tests turn it off to exercise the
	// server side checks.
	CheckScopes bool
}

// NewSDKClient creates a client with scope checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckScopes: true,
	}
}

// Login exchanges credentials for a Session. otp may be empty for users
// without TOTP; for the others the server answers mfa_required.
func (c *SDKClient) Login(ctx context.Context, username, password, otp string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}
	if otp != "" {
		body["otp"] = otp
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", body)
	if err != nil {
		return nil, err
	}
	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

// Refresh rotates a refresh token. The old token stops working.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/refresh", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}
	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// NewSessionFromTokens resumes a session from stored tokens. The session
// still refreshes itself when the access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken, scope string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Scope:        scope,
		ExpiresIn:    expiresIn,
	})
}

// GetLiveness calls /livez.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls /readyz. A degraded service returns an *APIError with
// status 503.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var h HealthResponse
	if err := decodeJSON(resp, &h, http.StatusOK); err != nil {
		return nil, err
	}
	return &h, nil
}
