package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

type UserService struct {
	Store store.Store
}

type CreateUserInput struct {
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	ClientID string      `json:"client_id,omitempty"`
}

func (in *CreateUserInput) normalize() {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Name = strings.TrimSpace(in.Name)
	in.ClientID = strings.TrimSpace(in.ClientID)
}

// CreateUser adds a staff or portal user. Portal users must point at an
// existing client; staff users must not.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	in.normalize()

	v := &domain.ValidationError{}
	if !usernamePattern.MatchString(in.Username) {
		v.Add("username", "must be 3 to 32 characters of a-z, 0-9, dot, dash or underscore")
	}
	v.Require("name", in.Name)
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		v.Add("password", "must have at least 8 characters")
	}
	switch {
	case !in.Role.Valid():
		v.Add("role", "must be admin, accountant or client")
	case in.Role == domain.RoleClient && in.ClientID == "":
		v.Add("client_id", "is required for client users")
	case in.Role != domain.RoleClient && in.ClientID != "":
		v.Add("client_id", "is only allowed for client users")
	}
	if err := v.Err(); err != nil {
		return domain.User{}, err
	}

	if in.ClientID != "" {
		if _, err := s.Store.Clients().GetClient(ctx, in.ClientID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.User{}, ErrClientNotFound
			}
			return domain.User{}, err
		}
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         in.Role,
		ClientID:     in.ClientID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if users == nil {
		users = []domain.User{}
	}
	return users, err
}

// Bootstrap creates the first admin when the users table is empty. It
// reports whether a user was created.
func (s *UserService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil || !empty {
		return false, err
	}
	_, err = s.CreateUser(ctx, CreateUserInput{
		Username: username,
		Name:     "Administrator",
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
