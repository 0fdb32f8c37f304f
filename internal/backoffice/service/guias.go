package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
	"github.com/shopspring/decimal"
)

type GuiaService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *GuiaService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeGuia(g *domain.Guia) {
	g.ClientID = strings.TrimSpace(g.ClientID)
	g.Kind = domain.GuiaKind(strings.ToUpper(strings.TrimSpace(string(g.Kind))))
	g.Competence = strings.TrimSpace(g.Competence)
	g.Barcode = domain.OnlyDigits(g.Barcode)
	g.Amount = domain.RoundMoney(g.Amount)
}

// Create registers a guia. One already past due is stored as overdue.
func (s *GuiaService) Create(ctx context.Context, g domain.Guia) (domain.Guia, error) {
	normalizeGuia(&g)
	g.Status = domain.GuiaPending
	if err := g.Validate(); err != nil {
		return domain.Guia{}, err
	}
	if err := clientMustExist(ctx, s.Store, g.ClientID); err != nil {
		return domain.Guia{}, err
	}

	now := s.now()
	if g.IsOverdue(domain.NewDate(now)) {
		g.Status = domain.GuiaOverdue
	}
	g.ID = idx.New().String()
	g.PaidAt = nil
	g.CreatedAt, g.UpdatedAt = now, now

	if err := s.Store.Guias().CreateGuia(ctx, g); err != nil {
		return domain.Guia{}, err
	}
	slogx.FromContext(ctx).Info("guia created",
		slog.String("guia_id", g.ID), slog.String("kind", string(g.Kind)))
	return g, nil
}

func (s *GuiaService) Get(ctx context.Context, actor Actor, id string) (domain.Guia, error) {
	g, err := s.Store.Guias().GetGuia(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Guia{}, ErrGuiaNotFound
		}
		return domain.Guia{}, err
	}
	if !actor.sees(g.ClientID) {
		return domain.Guia{}, ErrGuiaNotFound
	}
	return g, nil
}

func (s *GuiaService) List(ctx context.Context, actor Actor, f store.GuiaFilter) ([]domain.Guia, error) {
	f.ClientID = actor.scope(f.ClientID)
	if f.Competence != "" && !domain.ValidPeriod(f.Competence) {
		return nil, domain.NewValidationError("competence", "must be YYYY-MM")
	}
	return s.Store.Guias().ListGuias(ctx, f)
}

// Update edits an open guia. Status is kept, except that moving the due
// date re-evaluates pending and overdue.
func (s *GuiaService) Update(ctx context.Context, id string, g domain.Guia) (domain.Guia, error) {
	var out domain.Guia
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Guias().GetGuia(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrGuiaNotFound
			}
			return err
		}
		if !current.Open() {
			return ErrGuiaClosed
		}

		normalizeGuia(&g)
		g.ID, g.CreatedAt, g.PaidAt = current.ID, current.CreatedAt, nil
		g.Status = domain.GuiaPending
		if err := g.Validate(); err != nil {
			return err
		}
		if g.ClientID != current.ClientID {
			if err := clientMustExist(ctx, tx, g.ClientID); err != nil {
				return err
			}
		}
		now := s.now()
		if g.IsOverdue(domain.NewDate(now)) {
			g.Status = domain.GuiaOverdue
		}
		g.UpdatedAt = now

		if err := tx.Guias().UpdateGuia(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

// Pay records the payment of a pending or overdue guia.
func (s *GuiaService) Pay(ctx context.Context, id string, paidAt time.Time) (domain.Guia, error) {
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	paidAt = paidAt.UTC()
	return s.close(ctx, id, domain.GuiaPaid, &paidAt)
}

func (s *GuiaService) Cancel(ctx context.Context, id string) (domain.Guia, error) {
	return s.close(ctx, id, domain.GuiaCancelled, nil)
}

func (s *GuiaService) close(ctx context.Context, id string, status domain.GuiaStatus, paidAt *time.Time) (domain.Guia, error) {
	var out domain.Guia
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err := tx.Guias().GetGuia(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrGuiaNotFound
			}
			return err
		}
		if !g.Open() {
			return ErrGuiaClosed
		}
		if err := tx.Guias().SetGuiaStatus(ctx, id, status, paidAt); err != nil {
			return err
		}
		g.Status, g.PaidAt = status, paidAt
		out = g
		return nil
	})
	if err != nil {
		return domain.Guia{}, err
	}
	slogx.FromContext(ctx).Info("guia closed",
		slog.String("guia_id", id), slog.String("status", string(status)))
	return out, nil
}

// Delete removes a guia that was never paid.
func (s *GuiaService) Delete(ctx context.Context, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err := tx.Guias().GetGuia(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrGuiaNotFound
			}
			return err
		}
		if !g.Open() {
			return ErrGuiaClosed
		}
		return tx.Guias().DeleteGuia(ctx, id)
	})
}

// SweepOverdue flips every pending guia due before today to overdue.
func (s *GuiaService) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.Store.Guias().MarkOverdue(ctx, domain.NewDate(s.now()))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slogx.FromContext(ctx).Info("guias marked overdue", slog.Int64("count", n))
	}
	return n, nil
}

// EstimateDAS computes the monthly DAS for a Simples Nacional annex.
func (s *GuiaService) EstimateDAS(annex domain.Annex, revenue12m, revenueMonth decimal.Decimal) (domain.DASEstimate, error) {
	if revenueMonth.IsNegative() {
		return domain.DASEstimate{}, domain.NewValidationError("revenue_month", "must not be negative")
	}
	est, err := domain.EstimateDAS(annex, revenue12m, revenueMonth)
	if err != nil {
		return domain.DASEstimate{}, simplesInputError(err, "revenue_12m")
	}
	return est, nil
}
