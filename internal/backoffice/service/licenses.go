package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
)

type LicenseService struct {
	Store store.Store

	// Warning is how long before expiry a license is reported as expiring.
	Warning time.Duration
	Now     func() time.Time
}

func (s *LicenseService) today() domain.Date {
	if s.Now != nil {
		return domain.NewDate(s.Now())
	}
	return domain.Today()
}

func (s *LicenseService) warning() time.Duration {
	if s.Warning > 0 {
		return s.Warning
	}
	return DefaultLicenseWarning
}

func (s *LicenseService) withStatus(l domain.License) domain.License {
	l.Status = domain.LicenseStatusOn(l.ExpiresAt, s.today(), s.warning())
	return l
}

func normalizeLicense(l *domain.License) {
	l.ClientID = strings.TrimSpace(l.ClientID)
	l.Kind = strings.TrimSpace(l.Kind)
	l.Number = strings.TrimSpace(l.Number)
	l.Issuer = strings.TrimSpace(l.Issuer)
}

func (s *LicenseService) Create(ctx context.Context, l domain.License) (domain.License, error) {
	normalizeLicense(&l)
	if err := l.Validate(); err != nil {
		return domain.License{}, err
	}
	if err := clientMustExist(ctx, s.Store, l.ClientID); err != nil {
		return domain.License{}, err
	}
	now := time.Now().UTC()
	l.ID = idx.New().String()
	l.CreatedAt, l.UpdatedAt = now, now
	if err := s.Store.Licenses().CreateLicense(ctx, l); err != nil {
		return domain.License{}, err
	}
	return s.withStatus(l), nil
}

func (s *LicenseService) Get(ctx context.Context, actor Actor, id string) (domain.License, error) {
	l, err := s.Store.Licenses().GetLicense(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.License{}, ErrLicenseNotFound
		}
		return domain.License{}, err
	}
	if !actor.sees(l.ClientID) {
		return domain.License{}, ErrLicenseNotFound
	}
	return s.withStatus(l), nil
}

// List returns licenses with their status as of today. The status filter is
// applied after the status is computed.
func (s *LicenseService) List(ctx context.Context, actor Actor, f store.LicenseFilter, status domain.LicenseStatus) ([]domain.License, error) {
	switch status {
	case "", domain.LicenseValid, domain.LicenseExpiring, domain.LicenseExpired:
	default:
		return nil, domain.NewValidationError("status", "must be one of valid, expiring, expired")
	}
	f.ClientID = actor.scope(f.ClientID)
	all, err := s.Store.Licenses().ListLicenses(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.License, 0, len(all))
	for _, l := range all {
		l = s.withStatus(l)
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *LicenseService) Update(ctx context.Context, id string, l domain.License) (domain.License, error) {
	var out domain.License
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Licenses().GetLicense(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrLicenseNotFound
			}
			return err
		}
		normalizeLicense(&l)
		l.ID, l.CreatedAt = current.ID, current.CreatedAt
		if err := l.Validate(); err != nil {
			return err
		}
		if l.ClientID != current.ClientID {
			if err := clientMustExist(ctx, tx, l.ClientID); err != nil {
				return err
			}
		}
		l.UpdatedAt = time.Now().UTC()
		if err := tx.Licenses().UpdateLicense(ctx, l); err != nil {
			return err
		}
		out = s.withStatus(l)
		return nil
	})
	return out, err
}

func (s *LicenseService) Delete(ctx context.Context, id string) error {
	err := s.Store.Licenses().DeleteLicense(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLicenseNotFound
	}
	return err
}
