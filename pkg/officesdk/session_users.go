package officesdk

import (
	"context"
	"net/http"
)

// Me returns the caller's profile.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.call(ctx, http.MethodGet, "/v1/auth/me", nil, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a staff or portal user. Admin only.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var u User
	if err := s.call(ctx, http.MethodPost, "/v1/users", req, &u, http.StatusCreated, ScopeAdmin); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	var l List[User]
	if err := s.call(ctx, http.MethodGet, "/v1/users", nil, &l, http.StatusOK, ScopeAdmin); err != nil {
		return nil, err
	}
	return l.Items, nil
}

// EnrollMFA starts TOTP enrolment for a staff user.
func (s *Session) EnrollMFA(ctx context.Context) (*MFAEnrollment, error) {
	var e MFAEnrollment
	if err := s.call(ctx, http.MethodPost, "/v1/auth/mfa/enroll", nil, &e, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return &e, nil
}

// VerifyMFA confirms enrolment with a code from the authenticator app.
func (s *Session) VerifyMFA(ctx context.Context, code string) error {
	return s.call(ctx, http.MethodPost, "/v1/auth/mfa/verify", map[string]string{"code": code}, nil, http.StatusNoContent, ScopeRead)
}
