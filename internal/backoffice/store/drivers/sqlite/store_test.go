package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedClient(t *testing.T, s store.Store, document string) domain.Client {
	t.Helper()
	now := time.Now().UTC()
	c := domain.Client{
		ID:        idx.New().String(),
		Name:      "Padaria Pão Quente",
		Document:  document,
		TaxRegime: domain.RegimeSimplesNacional,
		Status:    domain.ClientActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Clients().CreateClient(context.Background(), c))
	return c
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())

	v, dirty, err := s.MigrationVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, v)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     "Ana",
		Name:         "Ana Souza",
		PasswordHash: "hash",
		Role:         domain.RoleAccountant,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.RoleAccountant, got.Role)
	require.False(t, got.MFAEnabled())

	require.NoError(t, s.Users().UpdateMFASecret(ctx, u.ID, "sealed"))
	require.NoError(t, s.Users().EnableMFA(ctx, u.ID, now))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "sealed", got.MFASecret)
	require.True(t, got.MFAEnabled())

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	u := domain.User{ID: idx.New().String(), Username: "bruno", Name: "Bruno", PasswordHash: "h", Role: domain.RoleAdmin, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	sid := idx.New().String()
	for _, hash := range []string{"a", "b"} {
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID: idx.New().String(), UserID: u.ID, TokenHash: hash, SessionID: sid,
			AMR: []string{"pwd", "otp"}, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		}))
	}

	tok, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"pwd", "otp"}, tok.AMR)
	require.False(t, tok.Revoked)

	require.NoError(t, s.RefreshTokens().RevokeSession(ctx, sid))
	tok, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "b")
	require.NoError(t, err)
	require.True(t, tok.Revoked)

	n, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestClientsAndDependents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := seedClient(t, s, "11222333000181")

	dup := c
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Clients().CreateClient(ctx, dup), store.ErrAlreadyExists)

	list, err := s.Clients().ListClients(ctx, store.ClientFilter{Query: "Pão"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.Clients().ListClients(ctx, store.ClientFilter{Status: domain.ClientInactive})
	require.NoError(t, err)
	require.Empty(t, list)

	n, err := s.Clients().CountDependents(ctx, c.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	now := time.Now().UTC()
	require.NoError(t, s.Guias().CreateGuia(ctx, domain.Guia{
		ID: idx.New().String(), ClientID: c.ID, Kind: domain.GuiaDAS, Competence: "2024-05",
		DueDate: domain.NewDate(now), Amount: decimal.RequireFromString("100"), Status: domain.GuiaPending,
		CreatedAt: now, UpdatedAt: now,
	}))

	n, err = s.Clients().CountDependents(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.ErrorIs(t, s.Clients().DeleteClient(ctx, "missing"), store.ErrNotFound)
}

func TestInvoicesWithItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedClient(t, s, "52998224725")

	n1, err := s.Invoices().NextNumber(ctx, domain.KindInvoice)
	require.NoError(t, err)
	n2, err := s.Invoices().NextNumber(ctx, domain.KindInvoice)
	require.NoError(t, err)
	require.Equal(t, n1+1, n2)

	q1, err := s.Invoices().NextNumber(ctx, domain.KindQuote)
	require.NoError(t, err)
	require.EqualValues(t, 1, q1)

	now := time.Now().UTC()
	inv := domain.Invoice{
		ID:        idx.New().String(),
		ClientID:  c.ID,
		Kind:      domain.KindInvoice,
		Number:    domain.KindInvoice.FormatNumber(n1),
		Status:    domain.InvoiceDraft,
		IssueDate: domain.NewDate(now),
		Items: []domain.InvoiceItem{
			{Description: "Honorários", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("850.00")},
			{Description: "Folha", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("100.277")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	inv.Recalculate()
	require.NoError(t, s.Invoices().CreateInvoice(ctx, inv))

	got, err := s.Invoices().GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, "Honorários", got.Items[0].Description)
	require.True(t, inv.Total.Equal(got.Total))
	require.Equal(t, inv.IssueDate.String(), got.IssueDate.String())

	got.Items = got.Items[:1]
	got.Recalculate()
	require.NoError(t, s.Invoices().UpdateInvoice(ctx, got))
	require.NoError(t, s.Invoices().UpdateInvoiceStatus(ctx, got.ID, domain.InvoiceIssued, now))

	list, err := s.Invoices().ListInvoices(ctx, store.InvoiceFilter{ClientID: c.ID, Status: domain.InvoiceIssued})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)
	require.Equal(t, "R$850,00", list[0].TotalDisplay)
}

func TestReconciliationTransactions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedClient(t, s, "52998224725")

	now := time.Now().UTC()
	rec := domain.Reconciliation{
		ID: idx.New().String(), ClientID: c.ID, Period: "2024-05", Bank: "Itaú", Account: "1234-5",
		Status: domain.ReconciliationOpen, CreatedAt: now,
	}
	require.NoError(t, s.Reconciliations().CreateReconciliation(ctx, rec))

	again := rec
	again.ID = idx.New().String()
	require.ErrorIs(t, s.Reconciliations().CreateReconciliation(ctx, again), store.ErrAlreadyExists)

	account := domain.LedgerAccount{ID: idx.New().String(), Code: "3.1.01", Name: "Receita de serviços", Kind: "revenue"}
	require.NoError(t, s.LedgerAccounts().CreateLedgerAccount(ctx, account))

	day, _ := domain.ParseDate("2024-05-10")
	txs := []domain.Transaction{
		{ID: idx.New().String(), ReconciliationID: rec.ID, Date: day, Description: "PIX recebido", Tipo: domain.Credito, Valor: decimal.NewFromInt(100)},
		{ID: idx.New().String(), ReconciliationID: rec.ID, Date: day, Description: "Tarifa", Tipo: domain.Debito, Valor: decimal.NewFromInt(40)},
	}
	require.NoError(t, s.Reconciliations().CreateTransactions(ctx, txs))

	require.NoError(t, s.Reconciliations().UpdateTransaction(ctx, txs[0].ID, "PIX cliente", account.ID))

	got, err := s.Reconciliations().ListTransactions(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, domain.TransactionConfirmed, got[0].Status)
	require.Equal(t, "PIX cliente", got[0].Description)
	require.Equal(t, domain.TransactionPending, got[1].Status)

	byClient, err := s.Reconciliations().ListClientTransactions(ctx, c.ID, "2024-05")
	require.NoError(t, err)
	require.Len(t, byClient, 2)

	fin := now
	require.NoError(t, s.Reconciliations().SetReconciliationStatus(ctx, rec.ID, domain.ReconciliationFinalized, &fin))
	r2, err := s.Reconciliations().GetReconciliation(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, r2.Finalized())
	require.NotNil(t, r2.FinalizedAt)
}

func TestGuiasMarkOverdue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedClient(t, s, "52998224725")

	now := time.Now().UTC()
	past, _ := domain.ParseDate("2024-01-20")
	future, _ := domain.ParseDate("2024-03-20")
	for _, due := range []domain.Date{past, future} {
		require.NoError(t, s.Guias().CreateGuia(ctx, domain.Guia{
			ID: idx.New().String(), ClientID: c.ID, Kind: domain.GuiaDAS, Competence: "2024-01",
			DueDate: due, Amount: decimal.RequireFromString("10.50"), Status: domain.GuiaPending,
			CreatedAt: now, UpdatedAt: now,
		}))
	}

	today, _ := domain.ParseDate("2024-02-01")
	n, err := s.Guias().MarkOverdue(ctx, today)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	overdue, err := s.Guias().ListGuias(ctx, store.GuiaFilter{Status: domain.GuiaOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, past.String(), overdue[0].DueDate.String())
	require.True(t, overdue[0].Amount.Equal(decimal.RequireFromString("10.5")))
}

func TestChatMessagesBumpThread(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := seedClient(t, s, "52998224725")

	now := time.Now().UTC()
	u := domain.User{ID: idx.New().String(), Username: "carla", Name: "Carla", PasswordHash: "h", Role: domain.RoleClient, ClientID: c.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	th := domain.Thread{ID: idx.New().String(), ClientID: c.ID, Subject: "DAS de maio", Status: domain.ThreadOpen, CreatedBy: u.ID, CreatedAt: now}
	require.NoError(t, s.Chat().CreateThread(ctx, th))

	msg := domain.Message{ID: idx.New().String(), ThreadID: th.ID, AuthorID: u.ID, AuthorName: u.Name, Body: "Olá", CreatedAt: now.Add(time.Minute)}
	require.NoError(t, s.Chat().CreateMessage(ctx, msg))

	got, err := s.Chat().GetThread(ctx, th.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessageAt)

	msgs, err := s.Chat().ListMessages(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "Olá", msgs[0].Body)

	threads, err := s.Chat().ListThreads(ctx, store.ThreadFilter{ClientID: c.ID})
	require.NoError(t, err)
	require.Len(t, threads, 1)
}

func TestMEIRegistrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	birth, _ := domain.ParseDate("1990-04-02")
	m := domain.MEIRegistration{
		ID: idx.New().String(), Status: domain.MEIDraft, CurrentStep: domain.StepAddress,
		Personal:  &domain.MEIPersonal{Name: "João da Silva", CPF: "52998224725", BirthDate: birth, Email: "joao@example.com", Phone: "11987654321"},
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.MEI().CreateRegistration(ctx, m))

	got, err := s.MEI().GetRegistration(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Personal)
	require.Nil(t, got.Address)
	require.Equal(t, "1990-04-02", got.Personal.BirthDate.String())

	got.Activity = &domain.MEIActivity{CNAEPrincipal: "4721102", Occupation: "Padeiro", EstimatedRevenue: decimal.NewFromInt(60000), BusinessForm: "estabelecimento_fixo"}
	got.CurrentStep = domain.StepReview
	require.NoError(t, s.MEI().UpdateRegistration(ctx, got))

	list, err := s.MEI().ListRegistrations(ctx, store.MEIFilter{Status: domain.MEIDraft})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "4721102", list[0].Activity.CNAEPrincipal)
	require.True(t, list[0].Activity.EstimatedRevenue.Equal(decimal.NewFromInt(60000)))
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		require.NoError(t, tx.Leads().CreateLead(ctx, domain.Lead{
			ID: idx.New().String(), Name: "Lead", Email: "lead@example.com", Status: domain.LeadNew,
			CreatedAt: now, UpdatedAt: now,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	leads, err := s.Leads().ListLeads(ctx, store.LeadFilter{})
	require.NoError(t, err)
	require.Empty(t, leads)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		return err
	})
	require.Error(t, err)
}
