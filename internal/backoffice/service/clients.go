package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
	"github.com/shopspring/decimal"
)

// DefaultLicenseWarning is how long before expiry a license counts as
// expiring.
const DefaultLicenseWarning = 30 * 24 * time.Hour

type ClientService struct {
	Store          store.Store
	LicenseWarning time.Duration
	Now            func() time.Time
}

func (s *ClientService) today() domain.Date {
	if s.Now != nil {
		return domain.NewDate(s.Now())
	}
	return domain.Today()
}

func (s *ClientService) Create(ctx context.Context, c domain.Client) (domain.Client, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return domain.Client{}, err
	}

	now := time.Now().UTC()
	c.ID = idx.New().String()
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Client{}, ErrDuplicateDocument
		}
		return domain.Client{}, err
	}
	slogx.FromContext(ctx).Info("client created", slog.String("client_id", c.ID))
	return c, nil
}

func (s *ClientService) Get(ctx context.Context, actor Actor, id string) (domain.Client, error) {
	if !actor.sees(id) {
		return domain.Client{}, ErrClientNotFound
	}
	c, err := s.Store.Clients().GetClient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, ErrClientNotFound
	}
	return c, err
}

func (s *ClientService) List(ctx context.Context, actor Actor, f store.ClientFilter) ([]domain.Client, error) {
	if actor.IsPortal() {
		c, err := s.Get(ctx, actor, actor.ClientID)
		if err != nil {
			return nil, err
		}
		return []domain.Client{c}, nil
	}
	return s.Store.Clients().ListClients(ctx, f)
}

// Update replaces the editable fields of a client.
func (s *ClientService) Update(ctx context.Context, id string, c domain.Client) (domain.Client, error) {
	current, err := s.Store.Clients().GetClient(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}

	c.ID = current.ID
	c.CreatedAt = current.CreatedAt
	c.Normalize()
	if err := c.Validate(); err != nil {
		return domain.Client{}, err
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.Store.Clients().UpdateClient(ctx, c); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Client{}, ErrDuplicateDocument
		case errors.Is(err, store.ErrNotFound):
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}
	return c, nil
}

// Delete removes a client that nothing references yet.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Clients().CountDependents(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrClientHasDependents
		}
		if err := tx.Clients().DeleteClient(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		return nil
	})
}

// Summary aggregates a client's month: statement totals over every
// reconciliation of the period, open invoices, unpaid guias and licenses
// needing attention. An empty period means the current month.
func (s *ClientService) Summary(ctx context.Context, actor Actor, id, period string) (domain.ClientSummary, error) {
	if period == "" {
		period = s.today().Format(domain.PeriodLayout)
	}
	if !domain.ValidPeriod(period) {
		return domain.ClientSummary{}, domain.NewValidationError("period", "must be YYYY-MM")
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return domain.ClientSummary{}, err
	}

	txs, err := s.Store.Reconciliations().ListClientTransactions(ctx, id, period)
	if err != nil {
		return domain.ClientSummary{}, err
	}
	resumo, totais := domain.SummarizeTransactions(txs)

	out := domain.ClientSummary{
		ClientID:          id,
		Period:            period,
		Resumo:            resumo,
		Totais:            totais,
		OpenInvoicesTotal: decimal.Zero,
		GuiasDue:          decimal.Zero,
	}

	invoices, err := s.Store.Invoices().ListInvoices(ctx, store.InvoiceFilter{
		ClientID: id, Kind: domain.KindInvoice, Status: domain.InvoiceIssued,
	})
	if err != nil {
		return domain.ClientSummary{}, err
	}
	for _, inv := range invoices {
		out.OpenInvoices++
		out.OpenInvoicesTotal = out.OpenInvoicesTotal.Add(inv.Total)
	}

	guias, err := s.Store.Guias().ListGuias(ctx, store.GuiaFilter{ClientID: id})
	if err != nil {
		return domain.ClientSummary{}, err
	}
	for _, g := range guias {
		switch g.Status {
		case domain.GuiaPending:
			out.PendingGuias++
		case domain.GuiaOverdue:
			out.OverdueGuias++
		default:
			continue
		}
		out.GuiasDue = out.GuiasDue.Add(g.Amount)
	}

	licenses, err := s.Store.Licenses().ListLicenses(ctx, store.LicenseFilter{ClientID: id})
	if err != nil {
		return domain.ClientSummary{}, err
	}
	today := s.today()
	for _, l := range licenses {
		if domain.LicenseStatusOn(l.ExpiresAt, today, s.warning()) != domain.LicenseValid {
			out.ExpiringLicenses++
		}
	}

	out.Display = map[string]string{
		"totalCreditos":       domain.FormatBRL(totais.TotalCreditos),
		"totalDebitos":        domain.FormatBRL(totais.TotalDebitos),
		"saldoFinal":          domain.FormatBRL(totais.SaldoFinal),
		"open_invoices_total": domain.FormatBRL(out.OpenInvoicesTotal),
		"guias_due":           domain.FormatBRL(out.GuiasDue),
	}
	return out, nil
}

func (s *ClientService) warning() time.Duration {
	if s.LicenseWarning > 0 {
		return s.LicenseWarning
	}
	return DefaultLicenseWarning
}

// FatorR classifies the client for the Simples Nacional annex from the last
// twelve months of payroll and revenue.
func (s *ClientService) FatorR(ctx context.Context, actor Actor, id string, payroll, revenue decimal.Decimal) (domain.FatorRResult, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return domain.FatorRResult{}, err
	}
	if payroll.IsNegative() {
		return domain.FatorRResult{}, domain.NewValidationError("payroll", "must not be negative")
	}
	res, err := domain.FatorR(payroll, revenue)
	if err != nil {
		return domain.FatorRResult{}, simplesInputError(err, "revenue")
	}
	return res, nil
}

// simplesInputError turns a rejected Simples Nacional input into a field
// error.
func simplesInputError(err error, revenueField string) error {
	switch {
	case errors.Is(err, domain.ErrNonPositiveRevenue):
		return domain.NewValidationError(revenueField, "must be greater than zero")
	case errors.Is(err, domain.ErrAboveSimplesLimit):
		return domain.NewValidationError(revenueField, "exceeds the Simples Nacional limit of R$4.800.000,00")
	case errors.Is(err, domain.ErrUnknownAnnex):
		return domain.NewValidationError("annex", "must be III or V")
	}
	return err
}
