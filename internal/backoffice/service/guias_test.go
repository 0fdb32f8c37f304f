package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/stretchr/testify/require"
)

func TestGuiaLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &GuiaService{Store: st, Now: fixedNow("2026-03-20T09:00:00Z")}
	c := createClient(t, &ClientService{Store: st}, cnpjPadaria)

	das, err := svc.Create(ctx, domain.Guia{
		ClientID: c.ID, Kind: "das", Competence: "2026-03",
		DueDate: day(t, "2026-04-20"), Amount: dec("612.347"),
		Barcode: "85890000006-1 23450328202-6 60420000000-1 00000000000-1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.GuiaDAS, das.Kind)
	require.Equal(t, domain.GuiaPending, das.Status)
	require.True(t, dec("612.35").Equal(das.Amount))
	require.Len(t, das.Barcode, 48)

	late, err := svc.Create(ctx, domain.Guia{
		ClientID: c.ID, Kind: domain.GuiaDARF, Competence: "2026-02",
		DueDate: day(t, "2026-03-10"), Amount: dec("90"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.GuiaOverdue, late.Status)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.Guia{ClientID: c.ID, Kind: "IPTU", Competence: "03/2026", Amount: dec("-1")})
		requireField(t, err, "kind")
		requireField(t, err, "competence")
		requireField(t, err, "due_date")
		requireField(t, err, "amount")
	})

	t.Run("update moves due date", func(t *testing.T) {
		late.DueDate = day(t, "2026-03-31")
		updated, err := svc.Update(ctx, late.ID, late)
		require.NoError(t, err)
		require.Equal(t, domain.GuiaPending, updated.Status)
	})

	t.Run("pay and freeze", func(t *testing.T) {
		paid, err := svc.Pay(ctx, das.ID, time.Time{})
		require.NoError(t, err)
		require.Equal(t, domain.GuiaPaid, paid.Status)
		require.NotNil(t, paid.PaidAt)

		_, err = svc.Pay(ctx, das.ID, time.Time{})
		require.ErrorIs(t, err, ErrGuiaClosed)
		_, err = svc.Update(ctx, das.ID, das)
		require.ErrorIs(t, err, ErrGuiaClosed)
		require.ErrorIs(t, svc.Delete(ctx, das.ID), ErrGuiaClosed)
	})

	t.Run("cancel", func(t *testing.T) {
		cancelled, err := svc.Cancel(ctx, late.ID)
		require.NoError(t, err)
		require.Equal(t, domain.GuiaCancelled, cancelled.Status)
		_, err = svc.Cancel(ctx, late.ID)
		require.ErrorIs(t, err, ErrGuiaClosed)
		require.ErrorIs(t, svc.Delete(ctx, late.ID), ErrGuiaClosed)
	})

	t.Run("delete open guia", func(t *testing.T) {
		g, err := svc.Create(ctx, domain.Guia{
			ClientID: c.ID, Kind: domain.GuiaISS, Competence: "2026-03",
			DueDate: day(t, "2026-04-10"), Amount: dec("45"),
		})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, g.ID))
		_, err = svc.Get(ctx, staff, g.ID)
		require.ErrorIs(t, err, ErrGuiaNotFound)
		require.ErrorIs(t, svc.Delete(ctx, g.ID), ErrGuiaNotFound)
	})

	t.Run("list filters", func(t *testing.T) {
		list, err := svc.List(ctx, staff, store.GuiaFilter{Status: domain.GuiaPaid})
		require.NoError(t, err)
		require.Len(t, list, 1)

		_, err = svc.List(ctx, staff, store.GuiaFilter{Competence: "2026"})
		requireField(t, err, "competence")

		_, err = svc.Get(ctx, Actor{ClientID: "other"}, das.ID)
		require.ErrorIs(t, err, ErrGuiaNotFound)
	})
}

func TestGuiaOverdueSweepAndPayment(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := &GuiaService{Store: st, Now: func() time.Time { return now }}
	c := createClient(t, &ClientService{Store: st}, cnpjPadaria)

	g, err := svc.Create(ctx, domain.Guia{ClientID: c.ID, Kind: domain.GuiaGPS, Competence: "2026-02", DueDate: day(t, "2026-03-20"), Amount: dec("300")})
	require.NoError(t, err)

	n, err := svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	now = now.AddDate(0, 0, 19) // the due date itself is not overdue
	n, err = svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	now = now.AddDate(0, 0, 1)
	n, err = svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := svc.Get(ctx, staff, g.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GuiaOverdue, got.Status)

	paid, err := svc.Pay(ctx, g.ID, now)
	require.NoError(t, err)
	require.Equal(t, domain.GuiaPaid, paid.Status)
}

func TestEstimateDAS(t *testing.T) {
	t.Parallel()
	svc := &GuiaService{}

	est, err := svc.EstimateDAS(domain.AnnexIII, dec("180000"), dec("15000"))
	require.NoError(t, err)
	require.True(t, dec("0.06").Equal(est.EffectiveRate))
	require.True(t, dec("900").Equal(est.Amount))
	require.Equal(t, "R$900,00", est.AmountDisplay)

	_, err = svc.EstimateDAS(domain.AnnexIII, dec("180000"), dec("-1"))
	requireField(t, err, "revenue_month")

	_, err = svc.EstimateDAS(domain.AnnexIII, dec("5000000"), dec("1"))
	requireField(t, err, "revenue_12m")

	_, err = svc.EstimateDAS("IV", dec("180000"), dec("1"))
	requireField(t, err, "annex")
}
