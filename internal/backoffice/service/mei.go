package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
	"github.com/invopop/jsonschema"
)

type MEIService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *MEIService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create starts a wizard run, optionally on behalf of a lead.
func (s *MEIService) Create(ctx context.Context, leadID string) (domain.MEIRegistration, error) {
	leadID = strings.TrimSpace(leadID)
	if leadID != "" {
		if _, err := s.Store.Leads().GetLead(ctx, leadID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.MEIRegistration{}, domain.NewValidationError("lead_id", "does not exist")
			}
			return domain.MEIRegistration{}, err
		}
	}
	now := s.now()
	m := domain.MEIRegistration{
		ID:          idx.New().String(),
		LeadID:      leadID,
		Status:      domain.MEIDraft,
		CurrentStep: domain.StepPersonal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.MEI().CreateRegistration(ctx, m); err != nil {
		return domain.MEIRegistration{}, err
	}
	slogx.FromContext(ctx).Info("mei registration started", slog.String("registration_id", m.ID))
	return m, nil
}

func (s *MEIService) Get(ctx context.Context, id string) (domain.MEIRegistration, error) {
	m, err := s.Store.MEI().GetRegistration(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.MEIRegistration{}, ErrRegistrationNotFound
	}
	return m, err
}

func (s *MEIService) List(ctx context.Context, f store.MEIFilter) ([]domain.MEIRegistration, error) {
	return s.Store.MEI().ListRegistrations(ctx, f)
}

// SaveStep validates and stores the payload of step n. A step is only
// reachable once every step before it was accepted; a valid step moves the
// wizard to max(current, n+1) so revisiting an earlier step keeps progress.
func (s *MEIService) SaveStep(ctx context.Context, id string, n int, payload json.RawMessage) (domain.MEIRegistration, error) {
	if n < domain.StepPersonal || n > domain.StepActivity {
		return domain.MEIRegistration{}, ErrUnknownStep
	}

	var out domain.MEIRegistration
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.MEI().GetRegistration(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if m.Status != domain.MEIDraft {
			return ErrRegistrationLocked
		}
		if n > m.CurrentStep {
			return ErrStepOutOfOrder
		}

		switch n {
		case domain.StepPersonal:
			var p domain.MEIPersonal
			if err := decodeStrict(payload, &p); err != nil {
				return err
			}
			p.Normalize()
			if err := p.ValidateAt(domain.NewDate(s.now())); err != nil {
				return err
			}
			m.Personal = &p
		case domain.StepAddress:
			var a domain.MEIAddress
			if err := decodeStrict(payload, &a); err != nil {
				return err
			}
			a.Normalize()
			if err := a.Validate(); err != nil {
				return err
			}
			m.Address = &a
		case domain.StepActivity:
			var a domain.MEIActivity
			if err := decodeStrict(payload, &a); err != nil {
				return err
			}
			a.Normalize()
			if err := a.Validate(); err != nil {
				return err
			}
			m.Activity = &a
		}

		m.CurrentStep = max(m.CurrentStep, n+1)
		m.UpdatedAt = s.now()
		if err := tx.MEI().UpdateRegistration(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

// Submit hands a complete draft over to staff.
func (s *MEIService) Submit(ctx context.Context, id string) (domain.MEIRegistration, error) {
	var out domain.MEIRegistration
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.MEI().GetRegistration(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if m.Status != domain.MEIDraft {
			return ErrRegistrationLocked
		}
		if !m.Complete() {
			return ErrRegistrationIncomplete
		}
		now := s.now()
		m.Status, m.SubmittedAt, m.UpdatedAt = domain.MEISubmitted, &now, now
		if err := tx.MEI().UpdateRegistration(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.MEIRegistration{}, err
	}
	slogx.FromContext(ctx).Info("mei registration submitted", slog.String("registration_id", id))
	return out, nil
}

// SetStatus moves a submitted registration through processing. A rejection
// needs a reason.
func (s *MEIService) SetStatus(ctx context.Context, id string, status domain.MEIStatus, reason string) (domain.MEIRegistration, error) {
	reason = strings.TrimSpace(reason)
	if status == domain.MEIRejected && reason == "" {
		return domain.MEIRegistration{}, domain.NewValidationError("reason", "is required when rejecting")
	}

	var out domain.MEIRegistration
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.MEI().GetRegistration(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if !domain.CanMEITransition(m.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.Status, status)
		}
		m.Status, m.Reason, m.UpdatedAt = status, reason, s.now()
		if err := tx.MEI().UpdateRegistration(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.MEIRegistration{}, err
	}
	slogx.FromContext(ctx).Info("mei registration status changed",
		slog.String("registration_id", id), slog.String("status", string(status)))
	return out, nil
}

func (s *MEIService) Schema(step int) (*jsonschema.Schema, error) {
	schema, err := domain.StepSchema(step)
	if err != nil {
		return nil, ErrUnknownStep
	}
	return schema, nil
}

// decodeStrict rejects unknown fields the same way the published step
// schemas do.
func decodeStrict(payload json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid step payload: "+err.Error())
	}
	return nil
}
