package officesdk

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// refreshMargin renews access tokens this long before they expire.
const refreshMargin = 30 * time.Second

// Session is an authenticated connection. Every call refreshes the access
// token when needed.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	scopes       map[string]bool
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	return &Session{
		client:       client,
		accessToken:  tok.AccessToken,
		refreshToken: tok.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshMargin),
		scopes:       parseScopes(tok.Scope),
	}
}

func parseScopes(scopeStr string) map[string]bool {
	parts := strings.Fields(scopeStr)
	scopes := make(map[string]bool, len(parts))
	for _, scope := range parts {
		scopes[scope] = true
	}
	return scopes
}

// getValidToken returns the access token, refreshing it first if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tok, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - refreshMargin)
	s.scopes = parseScopes(tok.Scope)

	return s.accessToken, nil
}

// Logout revokes the refresh token. The access token stays valid until it
// expires.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/auth/logout", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusNoContent)
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// HasScope reports whether the session's token carries scope.
func (s *Session) HasScope(scope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[scope]
}

// checkScopes fails when none of the accepted scopes was granted.
func (s *Session) checkScopes(accepted ...string) error {
	if !s.client.CheckScopes || len(accepted) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, scope := range accepted {
		if s.scopes[scope] {
			return nil
		}
	}
	return fmt.Errorf("missing required scope: one of %s", strings.Join(accepted, ", "))
}
