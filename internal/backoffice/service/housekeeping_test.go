package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingRunOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := fixedNow("2026-03-20T12:00:00Z")
	guias := &GuiaService{Store: st, Now: fixedNow("2026-03-01T12:00:00Z")}
	licenses := &LicenseService{Store: st, Now: now}
	c := createClient(t, &ClientService{Store: st}, cnpjPadaria)

	_, err := guias.Create(ctx, domain.Guia{ClientID: c.ID, Kind: domain.GuiaDAS, Competence: "2026-02", DueDate: day(t, "2026-03-10"), Amount: dec("10")})
	require.NoError(t, err)
	_, err = licenses.Create(ctx, domain.License{ClientID: c.ID, Kind: "alvará", ExpiresAt: day(t, "2026-04-01")})
	require.NoError(t, err)

	u, err := (&UserService{Store: st}).CreateUser(ctx, CreateUserInput{Username: "ana", Name: "Ana", Password: "long-enough", Role: domain.RoleAdmin})
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "expired", SessionID: "s",
		ExpiresAt: past, CreatedAt: past.Add(-time.Hour),
	}))

	guias.Now = now
	hk := NewHousekeepingService(st, guias, licenses, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	require.Equal(t, time.Hour, hk.Interval)

	rep := hk.RunOnce(ctx)
	require.Zero(t, rep.Failures)
	require.EqualValues(t, 1, rep.TokensDeleted)
	require.EqualValues(t, 1, rep.GuiasOverdue)
	require.Equal(t, 1, rep.LicensesExpiring)

	rep = hk.RunOnce(ctx)
	require.Zero(t, rep.TokensDeleted)
	require.Zero(t, rep.GuiasOverdue)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)
	hk := NewHousekeepingService(st, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Millisecond)
	hk.Start()
	time.Sleep(5 * time.Millisecond)
	hk.Stop()
}
