package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type guiasRepo struct {
	db dbtx
}

const guiaColumns = `id, client_id, kind, competence, due_date, amount, status, barcode, paid_at, created_at, updated_at`

func scanGuia(row interface{ Scan(...any) error }) (domain.Guia, error) {
	var (
		g                     domain.Guia
		kind, status, dueDate string
		paidAt                sql.NullTime
	)
	err := row.Scan(&g.ID, &g.ClientID, &kind, &g.Competence, &dueDate, &g.Amount, &status,
		&g.Barcode, &paidAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.Guia{}, err
	}
	if g.DueDate, err = parseDateText(dueDate); err != nil {
		return domain.Guia{}, err
	}
	g.Kind = domain.GuiaKind(kind)
	g.Status = domain.GuiaStatus(status)
	g.PaidAt = mapNullTimePtr(paidAt)
	return g, nil
}

func (r *guiasRepo) CreateGuia(ctx context.Context, g domain.Guia) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guias (id, client_id, kind, competence, due_date, amount, status, barcode, paid_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ClientID, string(g.Kind), g.Competence, dateText(g.DueDate), g.Amount,
		string(g.Status), g.Barcode, mapOptionalTime(g.PaidAt), g.CreatedAt.UTC(), g.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *guiasRepo) GetGuia(ctx context.Context, id string) (domain.Guia, error) {
	g, err := scanGuia(r.db.QueryRowContext(ctx, `SELECT `+guiaColumns+` FROM guias WHERE id = ?`, id))
	if err != nil {
		return domain.Guia{}, mapNotFound(err)
	}
	return g, nil
}

func (r *guiasRepo) ListGuias(ctx context.Context, f store.GuiaFilter) ([]domain.Guia, error) {
	var w where
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.Competence != "" {
		w.add(`competence = ?`, f.Competence)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+guiaColumns+` FROM guias`+w.String()+` ORDER BY due_date, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Guia{}
	for rows.Next() {
		g, err := scanGuia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *guiasRepo) UpdateGuia(ctx context.Context, g domain.Guia) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE guias
		SET kind = ?, competence = ?, due_date = ?, amount = ?, barcode = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		string(g.Kind), g.Competence, dateText(g.DueDate), g.Amount, g.Barcode, string(g.Status),
		g.UpdatedAt.UTC(), g.ID,
	))
}

func (r *guiasRepo) SetGuiaStatus(ctx context.Context, id string, status domain.GuiaStatus, paidAt *time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE guias SET status = ?, paid_at = ?, updated_at = ? WHERE id = ?`,
		string(status), mapOptionalTime(paidAt), time.Now().UTC(), id))
}

func (r *guiasRepo) DeleteGuia(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM guias WHERE id = ?`, id))
}

func (r *guiasRepo) MarkOverdue(ctx context.Context, day domain.Date) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE guias SET status = ?, updated_at = ? WHERE status = ? AND due_date < ?`,
		string(domain.GuiaOverdue), time.Now().UTC(), string(domain.GuiaPending), dateText(day))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
