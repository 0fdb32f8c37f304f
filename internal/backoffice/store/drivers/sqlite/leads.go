package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type leadsRepo struct {
	db dbtx
}

const leadColumns = `id, name, email, phone, source, status, notes, client_id, created_at, updated_at`

func scanLead(row interface{ Scan(...any) error }) (domain.Lead, error) {
	var (
		l        domain.Lead
		status   string
		clientID sql.NullString
	)
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Source, &status, &l.Notes, &clientID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.LeadStatus(status)
	l.ClientID = mapNullString(clientID)
	return l, nil
}

func (r *leadsRepo) CreateLead(ctx context.Context, l domain.Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, phone, source, status, notes, client_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Email, l.Phone, l.Source, string(l.Status), l.Notes,
		mapStringNull(l.ClientID), l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *leadsRepo) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	l, err := scanLead(r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
	if err != nil {
		return domain.Lead{}, mapNotFound(err)
	}
	return l, nil
}

func (r *leadsRepo) ListLeads(ctx context.Context, f store.LeadFilter) ([]domain.Lead, error) {
	var w where
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads`+w.String()+` ORDER BY created_at DESC, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *leadsRepo) UpdateLead(ctx context.Context, l domain.Lead) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE leads
		SET name = ?, email = ?, phone = ?, source = ?, status = ?, notes = ?, client_id = ?, updated_at = ?
		WHERE id = ?`,
		l.Name, l.Email, l.Phone, l.Source, string(l.Status), l.Notes,
		mapStringNull(l.ClientID), l.UpdatedAt.UTC(), l.ID,
	))
}

func (r *leadsRepo) DeleteLead(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id))
}
