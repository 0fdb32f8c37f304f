package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type meiRepo struct {
	db dbtx
}

const meiColumns = `id, lead_id, status, current_step, personal, address, activity, reason, submitted_at, created_at, updated_at`

// Step payloads are stored as JSON documents, one column per step.
func encodeStep(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeStep[T any](ns sql.NullString) (*T, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanMEI(row interface{ Scan(...any) error }) (domain.MEIRegistration, error) {
	var (
		m                           domain.MEIRegistration
		leadID                      sql.NullString
		status                      string
		personal, address, activity sql.NullString
		submittedAt                 sql.NullTime
	)
	err := row.Scan(&m.ID, &leadID, &status, &m.CurrentStep, &personal, &address, &activity,
		&m.Reason, &submittedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.MEIRegistration{}, err
	}
	m.LeadID = mapNullString(leadID)
	m.Status = domain.MEIStatus(status)
	m.SubmittedAt = mapNullTimePtr(submittedAt)
	if m.Personal, err = decodeStep[domain.MEIPersonal](personal); err != nil {
		return domain.MEIRegistration{}, err
	}
	if m.Address, err = decodeStep[domain.MEIAddress](address); err != nil {
		return domain.MEIRegistration{}, err
	}
	if m.Activity, err = decodeStep[domain.MEIActivity](activity); err != nil {
		return domain.MEIRegistration{}, err
	}
	return m, nil
}

func meiArgs(m domain.MEIRegistration) ([]any, error) {
	var personal, address, activity sql.NullString
	var err error
	if m.Personal != nil {
		if personal, err = encodeStep(m.Personal); err != nil {
			return nil, err
		}
	}
	if m.Address != nil {
		if address, err = encodeStep(m.Address); err != nil {
			return nil, err
		}
	}
	if m.Activity != nil {
		if activity, err = encodeStep(m.Activity); err != nil {
			return nil, err
		}
	}
	return []any{
		mapStringNull(m.LeadID), string(m.Status), m.CurrentStep, personal, address, activity,
		m.Reason, mapOptionalTime(m.SubmittedAt), m.UpdatedAt.UTC(),
	}, nil
}

func (r *meiRepo) CreateRegistration(ctx context.Context, m domain.MEIRegistration) error {
	args, err := meiArgs(m)
	if err != nil {
		return err
	}
	args = append([]any{m.ID}, args...)
	args = append(args, m.CreatedAt.UTC())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mei_registrations (id, lead_id, status, current_step, personal, address, activity, reason, submitted_at, updated_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return mapConstraint(err)
}

func (r *meiRepo) GetRegistration(ctx context.Context, id string) (domain.MEIRegistration, error) {
	m, err := scanMEI(r.db.QueryRowContext(ctx, `SELECT `+meiColumns+` FROM mei_registrations WHERE id = ?`, id))
	if err != nil {
		return domain.MEIRegistration{}, mapNotFound(err)
	}
	return m, nil
}

func (r *meiRepo) ListRegistrations(ctx context.Context, f store.MEIFilter) ([]domain.MEIRegistration, error) {
	var w where
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+meiColumns+` FROM mei_registrations`+w.String()+` ORDER BY created_at DESC, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MEIRegistration{}
	for rows.Next() {
		m, err := scanMEI(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *meiRepo) UpdateRegistration(ctx context.Context, m domain.MEIRegistration) error {
	args, err := meiArgs(m)
	if err != nil {
		return err
	}
	args = append(args, m.ID)
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE mei_registrations
		SET lead_id = ?, status = ?, current_step = ?, personal = ?, address = ?, activity = ?,
			reason = ?, submitted_at = ?, updated_at = ?
		WHERE id = ?`, args...))
}
