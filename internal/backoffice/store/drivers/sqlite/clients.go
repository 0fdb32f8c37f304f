package sqlite

import (
	"context"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, trade_name, document, email, phone, tax_regime, status, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
	var (
		c              domain.Client
		regime, status string
	)
	err := row.Scan(&c.ID, &c.Name, &c.TradeName, &c.Document, &c.Email, &c.Phone, &regime, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	c.TaxRegime = domain.TaxRegime(regime)
	c.Status = domain.ClientStatus(status)
	return c, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, trade_name, document, email, phone, tax_regime, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.TradeName, c.Document, c.Email, c.Phone,
		string(c.TaxRegime), string(c.Status), c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *clientsRepo) GetClient(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id))
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context, f store.ClientFilter) ([]domain.Client, error) {
	var w where
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		w.add(`(name LIKE ? OR trade_name LIKE ? OR document LIKE ?)`, like, like, like)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients`+w.String()+` ORDER BY name, id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, trade_name = ?, document = ?, email = ?, phone = ?, tax_regime = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.TradeName, c.Document, c.Email, c.Phone,
		string(c.TaxRegime), string(c.Status), c.UpdatedAt.UTC(), c.ID,
	)
	return expectOne(res, mapConstraint(err))
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id))
}

func (r *clientsRepo) CountDependents(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM invoices WHERE client_id = ?1) +
			(SELECT COUNT(*) FROM reconciliations WHERE client_id = ?1) +
			(SELECT COUNT(*) FROM guias WHERE client_id = ?1) +
			(SELECT COUNT(*) FROM licenses WHERE client_id = ?1) +
			(SELECT COUNT(*) FROM chat_threads WHERE client_id = ?1)`, id,
	).Scan(&n)
	return n, err
}
