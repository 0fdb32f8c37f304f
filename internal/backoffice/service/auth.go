package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

type AuthService struct {
	Store      store.Store
	KeyManager *jwtx.KeyManager
	Sealer     *cryptox.Sealer // seals TOTP seeds at rest
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login checks username and password and, for users with TOTP enabled, the
// one time code. A missing code is reported as ErrMFARequired so the caller
// can prompt for it.
func (s *AuthService) Login(ctx context.Context, username, password, code string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	u, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("login failed", slog.String("username", u.Username))
		return nil, ErrInvalidCredentials
	}

	amr := []string{jwtx.AMRPassword}
	if u.MFAEnabled() {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, ErrMFARequired
		}
		if err := s.checkTOTP(u, code); err != nil {
			l.Info("login otp rejected", slog.String("username", u.Username))
			return nil, err
		}
		amr = append(amr, jwtx.AMROTP, jwtx.AMRMFA)
	}

	return s.issue(ctx, s.Store, u, idx.New().String(), amr, now)
}

// Refresh rotates a refresh token. Presenting an already revoked token
// revokes the whole session.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque == "" {
		return nil, ErrInvalidRefresh
	}
	fp := cryptox.FingerprintToken(refreshOpaque)

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked {
		l.Warn("refresh token reuse detected", slog.String("session_id", rt.SessionID), slog.String("user_id", rt.UserID))
		if err := s.Store.RefreshTokens().RevokeSession(ctx, rt.SessionID); err != nil {
			l.Error("failed to revoke session", slog.Any("error", err))
		}
		return nil, ErrInvalidRefresh
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	amr := rt.AMR
	if !slices.Contains(amr, jwtx.AMRRefresh) {
		amr = append(slices.Clone(amr), jwtx.AMRRefresh)
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		pair, err = s.issue(ctx, tx, u, rt.SessionID, amr, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshOpaque string) error {
	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque == "" {
		return nil
	}
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// EnrollMFA generates a TOTP seed for a staff user. MFA stays disabled until
// VerifyMFA accepts a code.
func (s *AuthService) EnrollMFA(ctx context.Context, actor Actor) (domain.MFAEnrollment, error) {
	u, err := s.user(ctx, actor.UserID)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}
	if !u.Role.IsStaff() {
		return domain.MFAEnrollment{}, ErrMFAStaffOnly
	}
	if u.MFAEnabled() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	sealed, err := s.Sealer.Seal(key.Secret())
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to seal TOTP key: %w", err)
	}
	if err := s.Store.Users().UpdateMFASecret(ctx, u.ID, sealed); err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to store MFA secret: %w", err)
	}

	return domain.MFAEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// VerifyMFA enables MFA once the user proves they hold the enrolled seed.
func (s *AuthService) VerifyMFA(ctx context.Context, actor Actor, code string) error {
	u, err := s.user(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if u.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if u.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if err := s.checkTOTP(u, strings.TrimSpace(code)); err != nil {
		return err
	}
	return s.Store.Users().EnableMFA(ctx, u.ID, time.Now())
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, actor Actor) (domain.User, error) {
	return s.user(ctx, actor.UserID)
}

func (s *AuthService) user(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *AuthService) checkTOTP(u domain.User, code string) error {
	secret, err := s.Sealer.Open(u.MFASecret)
	if err != nil {
		return fmt.Errorf("failed to open MFA secret: %w", err)
	}
	if !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	return nil
}

// issue signs an access token and stores a fresh refresh token through st,
// which may be a transaction.
func (s *AuthService) issue(
	ctx context.Context,
	st store.Store,
	u domain.User,
	sessionID string,
	amr []string,
	now time.Time,
) (*domain.TokenPair, error) {
	scopes := u.Role.Scopes()

	claims := jwtx.NewAccessClaims(jwtx.AccessParams{
		Subject:       u.ID,
		SessionID:     sessionID,
		Scopes:        scopes,
		AMR:           amr,
		Username:      u.Username,
		PreferredName: u.Name,
		Role:          string(u.Role),
		ClientID:      u.ClientID,
	}, s.AccessTTL, s.Issuer, s.Audience, now)

	access, err := s.KeyManager.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign access token", slog.Any("error", err))
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	if err := st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		AMR:       amr,
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL / time.Second),
		Scope:        strings.Join(scopes, " "),
	}, nil
}
