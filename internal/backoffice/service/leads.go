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

type LeadService struct {
	Store store.Store
}

// ConvertLeadInput carries what a lead lacks to become a client.
type ConvertLeadInput struct {
	Document  string           `json:"document"`
	TaxRegime domain.TaxRegime `json:"tax_regime"`
	TradeName string           `json:"trade_name,omitempty"`
}

func normalizeLead(l *domain.Lead) {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	l.Phone = domain.OnlyDigits(l.Phone)
	l.Source = strings.TrimSpace(l.Source)
	l.Notes = strings.TrimSpace(l.Notes)
	if l.Status == "" {
		l.Status = domain.LeadNew
	}
}

func (s *LeadService) Create(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	normalizeLead(&l)
	// Conversion is the only way to reach converted.
	if l.Status == domain.LeadConverted {
		return domain.Lead{}, domain.NewValidationError("status", "use the convert operation")
	}
	if err := l.Validate(); err != nil {
		return domain.Lead{}, err
	}
	now := time.Now().UTC()
	l.ID = idx.New().String()
	l.ClientID = ""
	l.CreatedAt, l.UpdatedAt = now, now

	if err := s.Store.Leads().CreateLead(ctx, l); err != nil {
		return domain.Lead{}, err
	}
	slogx.FromContext(ctx).Info("lead created", slog.String("lead_id", l.ID))
	return l, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (domain.Lead, error) {
	l, err := s.Store.Leads().GetLead(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Lead{}, ErrLeadNotFound
	}
	return l, err
}

func (s *LeadService) List(ctx context.Context, f store.LeadFilter) ([]domain.Lead, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of new, contacted, qualified, converted, lost")
	}
	return s.Store.Leads().ListLeads(ctx, f)
}

// Update edits an open lead. A closed lead keeps its status, only the notes
// may still change.
func (s *LeadService) Update(ctx context.Context, id string, l domain.Lead) (domain.Lead, error) {
	var out domain.Lead
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Leads().GetLead(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		normalizeLead(&l)
		if current.Status.Closed() {
			if l.Status != current.Status {
				return ErrLeadClosed
			}
			current.Notes = l.Notes
			l = current
		} else if l.Status == domain.LeadConverted {
			return domain.NewValidationError("status", "use the convert operation")
		}

		l.ID, l.ClientID, l.CreatedAt = current.ID, current.ClientID, current.CreatedAt
		if err := l.Validate(); err != nil {
			return err
		}
		l.UpdatedAt = time.Now().UTC()
		if err := tx.Leads().UpdateLead(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	err := s.Store.Leads().DeleteLead(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

// Convert creates a client from an open lead and marks the lead converted,
// both or neither.
func (s *LeadService) Convert(ctx context.Context, id string, in ConvertLeadInput) (domain.Lead, domain.Client, error) {
	var (
		lead   domain.Lead
		client domain.Client
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		l, err := tx.Leads().GetLead(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		if l.Status.Closed() {
			return ErrLeadClosed
		}

		now := time.Now().UTC()
		c := domain.Client{
			ID:        idx.New().String(),
			Name:      l.Name,
			TradeName: in.TradeName,
			Document:  in.Document,
			Email:     l.Email,
			Phone:     l.Phone,
			TaxRegime: in.TaxRegime,
			CreatedAt: now,
			UpdatedAt: now,
		}
		c.Normalize()
		if err := c.Validate(); err != nil {
			return err
		}
		if err := tx.Clients().CreateClient(ctx, c); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateDocument
			}
			return err
		}

		l.Status, l.ClientID, l.UpdatedAt = domain.LeadConverted, c.ID, now
		if err := tx.Leads().UpdateLead(ctx, l); err != nil {
			return err
		}
		lead, client = l, c
		return nil
	})
	if err != nil {
		return domain.Lead{}, domain.Client{}, err
	}
	slogx.FromContext(ctx).Info("lead converted",
		slog.String("lead_id", lead.ID), slog.String("client_id", client.ID))
	return lead, client, nil
}
