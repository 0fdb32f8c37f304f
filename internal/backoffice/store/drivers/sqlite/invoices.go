package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type invoicesRepo struct {
	db dbtx
}

const invoiceColumns = `id, client_id, kind, number, status, issue_date, due_date, notes, total, source_id, created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (domain.Invoice, error) {
	var (
		inv                domain.Invoice
		kind, status       string
		issueDate, dueDate string
		sourceID           sql.NullString
	)
	err := row.Scan(&inv.ID, &inv.ClientID, &kind, &inv.Number, &status, &issueDate, &dueDate,
		&inv.Notes, &inv.Total, &sourceID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Kind = domain.InvoiceKind(kind)
	inv.Status = domain.InvoiceStatus(status)
	inv.SourceID = mapNullString(sourceID)
	if inv.IssueDate, err = parseDateText(issueDate); err != nil {
		return domain.Invoice{}, err
	}
	if inv.DueDate, err = parseDateText(dueDate); err != nil {
		return domain.Invoice{}, err
	}
	inv.TotalDisplay = domain.FormatBRL(inv.Total)
	return inv, nil
}

func (r *invoicesRepo) NextNumber(ctx context.Context, kind domain.InvoiceKind) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE invoice_sequences SET last = last + 1 WHERE kind = ? RETURNING last`, string(kind),
	).Scan(&n)
	return n, mapNotFound(err)
}

func (r *invoicesRepo) CreateInvoice(ctx context.Context, inv domain.Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (id, client_id, kind, number, status, issue_date, due_date, notes, total, source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ClientID, string(inv.Kind), inv.Number, string(inv.Status),
		dateText(inv.IssueDate), dateText(inv.DueDate), inv.Notes, inv.Total,
		mapStringNull(inv.SourceID), inv.CreatedAt.UTC(), inv.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.insertItems(ctx, inv.ID, inv.Items)
}

func (r *invoicesRepo) insertItems(ctx context.Context, invoiceID string, items []domain.InvoiceItem) error {
	for i, it := range items {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			invoiceID, i, it.Description, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *invoicesRepo) loadItems(ctx context.Context, inv *domain.Invoice) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT description, quantity, unit_price FROM invoice_items WHERE invoice_id = ? ORDER BY position`, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	inv.Items = []domain.InvoiceItem{}
	for rows.Next() {
		var it domain.InvoiceItem
		if err := rows.Scan(&it.Description, &it.Quantity, &it.UnitPrice); err != nil {
			return err
		}
		inv.Items = append(inv.Items, it)
	}
	return rows.Err()
}

func (r *invoicesRepo) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err != nil {
		return domain.Invoice{}, mapNotFound(err)
	}
	if err := r.loadItems(ctx, &inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (r *invoicesRepo) ListInvoices(ctx context.Context, f store.InvoiceFilter) ([]domain.Invoice, error) {
	var w where
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}
	if f.Kind != "" {
		w.add(`kind = ?`, string(f.Kind))
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}

	out, err := r.list(ctx, `SELECT `+invoiceColumns+` FROM invoices`+w.String()+` ORDER BY issue_date DESC, number DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	// Items are loaded after the cursor is closed; the pool holds one connection.
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *invoicesRepo) list(ctx context.Context, query string, args ...any) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invoicesRepo) UpdateInvoice(ctx context.Context, inv domain.Invoice) error {
	err := expectOne(r.db.ExecContext(ctx, `
		UPDATE invoices
		SET client_id = ?, issue_date = ?, due_date = ?, notes = ?, total = ?, updated_at = ?
		WHERE id = ?`,
		inv.ClientID, dateText(inv.IssueDate), dateText(inv.DueDate), inv.Notes, inv.Total,
		inv.UpdatedAt.UTC(), inv.ID,
	))
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, inv.ID); err != nil {
		return err
	}
	return r.insertItems(ctx, inv.ID, inv.Items)
}

func (r *invoicesRepo) UpdateInvoiceStatus(ctx context.Context, id string, status domain.InvoiceStatus, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`, string(status), at.UTC(), id))
}

func (r *invoicesRepo) DeleteInvoice(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id))
}
