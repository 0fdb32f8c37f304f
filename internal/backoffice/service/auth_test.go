package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *UserService) {
	t.Helper()
	st := newTestStore(t)
	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: "escritorio-test", Audience: []string{"backoffice"}})
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer([]byte("test-pepper"))
	require.NoError(t, err)
	return &AuthService{
			Store:      st,
			KeyManager: km,
			Sealer:     sealer,
			Issuer:     "escritorio-test",
			Audience:   []string{"backoffice"},
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		}, &UserService{
			Store: st,
		}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	_, users := newAuthService(t)

	created, err := users.Bootstrap(ctx, "", "")
	require.NoError(t, err)
	require.False(t, created)

	created, err = users.Bootstrap(ctx, "admin", "correct-horse")
	require.NoError(t, err)
	require.True(t, created)

	created, err = users.Bootstrap(ctx, "admin2", "correct-horse")
	require.NoError(t, err)
	require.False(t, created)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	_, users := newAuthService(t)

	_, err := users.CreateUser(ctx, CreateUserInput{Username: "x", Name: "", Password: "short", Role: "boss"})
	requireField(t, err, "username")
	requireField(t, err, "password")
	requireField(t, err, "role")

	_, err = users.CreateUser(ctx, CreateUserInput{Username: "cliente", Name: "Cliente", Password: "long-enough", Role: domain.RoleClient})
	requireField(t, err, "client_id")

	_, err = users.CreateUser(ctx, CreateUserInput{Username: "cliente", Name: "Cliente", Password: "long-enough", Role: domain.RoleClient, ClientID: "missing"})
	require.ErrorIs(t, err, ErrClientNotFound)

	_, err = users.CreateUser(ctx, CreateUserInput{Username: "Ana", Name: "Ana", Password: "long-enough", Role: domain.RoleAccountant})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, CreateUserInput{Username: "ana", Name: "Ana", Password: "long-enough", Role: domain.RoleAccountant})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuthService(t)

	u, err := users.CreateUser(ctx, CreateUserInput{Username: "ana", Name: "Ana", Password: "long-enough", Role: domain.RoleAccountant})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, "ana", "nope", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.Login(ctx, "bob", "long-enough", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	pair, err := auth.Login(ctx, "ana", "long-enough", "")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, "backoffice:read backoffice:write", pair.Scope)

	claims, err := auth.KeyManager.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "accountant", claims.Role)
	require.Equal(t, []string{jwtx.AMRPassword}, claims.AMR)

	rotated, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	t.Run("reusing a rotated token revokes the session", func(t *testing.T) {
		_, err := auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		_, err = auth.Refresh(ctx, rotated.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		fresh, err := auth.Login(ctx, "ana", "long-enough", "")
		require.NoError(t, err)
		require.NoError(t, auth.Logout(ctx, fresh.RefreshToken))
		require.NoError(t, auth.Logout(ctx, fresh.RefreshToken))
		require.NoError(t, auth.Logout(ctx, "unknown"))

		_, err = auth.Refresh(ctx, fresh.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestMFA(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuthService(t)
	clients := &ClientService{Store: auth.Store}

	u, err := users.CreateUser(ctx, CreateUserInput{Username: "ana", Name: "Ana", Password: "long-enough", Role: domain.RoleAdmin})
	require.NoError(t, err)
	actor := Actor{UserID: u.ID, Role: u.Role}

	err = auth.VerifyMFA(ctx, actor, "123456")
	require.ErrorIs(t, err, ErrMFANotEnrolled)

	enrol, err := auth.EnrollMFA(ctx, actor)
	require.NoError(t, err)
	require.NotEmpty(t, enrol.Secret)
	require.Contains(t, enrol.URL, "otpauth://")

	err = auth.VerifyMFA(ctx, actor, "000000")
	require.ErrorIs(t, err, ErrInvalidTOTPCode)

	code, err := totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, auth.VerifyMFA(ctx, actor, code))

	_, err = auth.EnrollMFA(ctx, actor)
	require.ErrorIs(t, err, ErrMFAAlreadyEnabled)

	_, err = auth.Login(ctx, "ana", "long-enough", "")
	require.ErrorIs(t, err, ErrMFARequired)

	code, err = totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	pair, err := auth.Login(ctx, "ana", "long-enough", code)
	require.NoError(t, err)
	claims, err := auth.KeyManager.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA}, claims.AMR)

	t.Run("portal users cannot enrol", func(t *testing.T) {
		c := createClient(t, clients, cnpjPadaria)
		pu, err := users.CreateUser(ctx, CreateUserInput{Username: "padaria", Name: "Padaria", Password: "long-enough", Role: domain.RoleClient, ClientID: c.ID})
		require.NoError(t, err)
		_, err = auth.EnrollMFA(ctx, Actor{UserID: pu.ID, Role: pu.Role, ClientID: c.ID})
		require.ErrorIs(t, err, ErrMFAStaffOnly)
	})
}
