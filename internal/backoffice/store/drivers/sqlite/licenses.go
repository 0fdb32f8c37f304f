package sqlite

import (
	"context"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type licensesRepo struct {
	db dbtx
}

const licenseColumns = `id, client_id, kind, number, issuer, issued_at, expires_at, created_at, updated_at`

// scanLicense leaves Status empty; it depends on the day it is read.
func scanLicense(row interface{ Scan(...any) error }) (domain.License, error) {
	var (
		l                   domain.License
		issuedAt, expiresAt string
	)
	err := row.Scan(&l.ID, &l.ClientID, &l.Kind, &l.Number, &l.Issuer, &issuedAt, &expiresAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.License{}, err
	}
	if l.IssuedAt, err = parseDateText(issuedAt); err != nil {
		return domain.License{}, err
	}
	if l.ExpiresAt, err = parseDateText(expiresAt); err != nil {
		return domain.License{}, err
	}
	return l, nil
}

func (r *licensesRepo) CreateLicense(ctx context.Context, l domain.License) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO licenses (id, client_id, kind, number, issuer, issued_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ClientID, l.Kind, l.Number, l.Issuer, dateText(l.IssuedAt), dateText(l.ExpiresAt),
		l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *licensesRepo) GetLicense(ctx context.Context, id string) (domain.License, error) {
	l, err := scanLicense(r.db.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE id = ?`, id))
	if err != nil {
		return domain.License{}, mapNotFound(err)
	}
	return l, nil
}

func (r *licensesRepo) ListLicenses(ctx context.Context, f store.LicenseFilter) ([]domain.License, error) {
	var w where
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+licenseColumns+` FROM licenses`+w.String()+` ORDER BY expires_at, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.License{}
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *licensesRepo) UpdateLicense(ctx context.Context, l domain.License) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE licenses
		SET kind = ?, number = ?, issuer = ?, issued_at = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		l.Kind, l.Number, l.Issuer, dateText(l.IssuedAt), dateText(l.ExpiresAt), l.UpdatedAt.UTC(), l.ID,
	))
}

func (r *licensesRepo) DeleteLicense(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM licenses WHERE id = ?`, id))
}
