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
)

type InvoiceService struct {
	Store store.Store
}

// InvoiceInput is the editable content of an invoice or quote.
type InvoiceInput struct {
	ClientID  string               `json:"client_id"`
	Kind      domain.InvoiceKind   `json:"kind"`
	IssueDate domain.Date          `json:"issue_date"`
	DueDate   domain.Date          `json:"due_date"`
	Notes     string               `json:"notes,omitempty"`
	Items     []domain.InvoiceItem `json:"items"`
}

func (in InvoiceInput) apply(inv *domain.Invoice) {
	inv.ClientID = strings.TrimSpace(in.ClientID)
	inv.IssueDate = in.IssueDate
	inv.DueDate = in.DueDate
	inv.Notes = strings.TrimSpace(in.Notes)
	inv.Items = make([]domain.InvoiceItem, len(in.Items))
	for i, it := range in.Items {
		it.Description = strings.TrimSpace(it.Description)
		inv.Items[i] = it
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = domain.Today()
	}
	inv.Recalculate()
}

// Create stores a draft and assigns the next number of its kind.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (domain.Invoice, error) {
	now := time.Now().UTC()
	inv := domain.Invoice{
		ID:        idx.New().String(),
		Kind:      in.Kind,
		Status:    domain.InvoiceDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&inv)
	if err := inv.Validate(); err != nil {
		return domain.Invoice{}, err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := clientMustExist(ctx, tx, inv.ClientID); err != nil {
			return err
		}
		n, err := tx.Invoices().NextNumber(ctx, inv.Kind)
		if err != nil {
			return err
		}
		inv.Number = inv.Kind.FormatNumber(n)
		return tx.Invoices().CreateInvoice(ctx, inv)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	slogx.FromContext(ctx).Info("invoice created",
		slog.String("invoice_id", inv.ID), slog.String("number", inv.Number))
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, actor Actor, id string) (domain.Invoice, error) {
	inv, err := s.Store.Invoices().GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invoice{}, ErrInvoiceNotFound
		}
		return domain.Invoice{}, err
	}
	if !actor.sees(inv.ClientID) {
		return domain.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context, actor Actor, f store.InvoiceFilter) ([]domain.Invoice, error) {
	f.ClientID = actor.scope(f.ClientID)
	return s.Store.Invoices().ListInvoices(ctx, f)
}

// Update replaces the content of a draft. Kind and number never change.
func (s *InvoiceService) Update(ctx context.Context, id string, in InvoiceInput) (domain.Invoice, error) {
	var out domain.Invoice
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invoices().GetInvoice(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if !inv.Editable() {
			return ErrInvoiceNotEditable
		}

		in.apply(&inv)
		if err := inv.Validate(); err != nil {
			return err
		}
		if err := clientMustExist(ctx, tx, inv.ClientID); err != nil {
			return err
		}
		inv.UpdatedAt = time.Now().UTC()
		if err := tx.Invoices().UpdateInvoice(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

// SetStatus moves a document along its lifecycle.
func (s *InvoiceService) SetStatus(ctx context.Context, id string, to domain.InvoiceStatus) (domain.Invoice, error) {
	var out domain.Invoice
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invoices().GetInvoice(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if !domain.CanTransition(inv.Kind, inv.Status, to) {
			return ErrInvalidTransition
		}
		now := time.Now().UTC()
		if err := tx.Invoices().UpdateInvoiceStatus(ctx, id, to, now); err != nil {
			return err
		}
		inv.Status, inv.UpdatedAt = to, now
		out = inv
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	slogx.FromContext(ctx).Info("invoice status changed",
		slog.String("invoice_id", id), slog.String("status", string(to)))
	return out, nil
}

// Convert turns an accepted quote into a new draft invoice with the same
// items. A quote converts at most once.
func (s *InvoiceService) Convert(ctx context.Context, id string) (domain.Invoice, error) {
	var out domain.Invoice
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		quote, err := tx.Invoices().GetInvoice(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if quote.Kind != domain.KindQuote || quote.Status != domain.QuoteAccepted {
			return ErrQuoteNotAccepted
		}

		existing, err := tx.Invoices().ListInvoices(ctx, store.InvoiceFilter{ClientID: quote.ClientID, Kind: domain.KindInvoice})
		if err != nil {
			return err
		}
		for _, inv := range existing {
			if inv.SourceID == quote.ID {
				return ErrQuoteConverted
			}
		}

		n, err := tx.Invoices().NextNumber(ctx, domain.KindInvoice)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		out = domain.Invoice{
			ID:        idx.New().String(),
			ClientID:  quote.ClientID,
			Kind:      domain.KindInvoice,
			Number:    domain.KindInvoice.FormatNumber(n),
			Status:    domain.InvoiceDraft,
			IssueDate: domain.NewDate(now),
			Notes:     quote.Notes,
			Items:     quote.Items,
			SourceID:  quote.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		out.Recalculate()
		return tx.Invoices().CreateInvoice(ctx, out)
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return out, nil
}

// Delete removes a draft.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invoices().GetInvoice(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if !inv.Editable() {
			return ErrInvoiceNotEditable
		}
		return tx.Invoices().DeleteInvoice(ctx, id)
	})
}

// clientMustExist reports a missing client as a field error on client_id.
func clientMustExist(ctx context.Context, st store.Store, clientID string) error {
	_, err := st.Clients().GetClient(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewValidationError("client_id", "does not exist")
	}
	return err
}
