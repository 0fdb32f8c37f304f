package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type reconciliationsRepo struct {
	db dbtx
}

const reconciliationColumns = `id, client_id, period, bank, account, status, created_at, finalized_at`

func scanReconciliation(row interface{ Scan(...any) error }) (domain.Reconciliation, error) {
	var (
		rec         domain.Reconciliation
		status      string
		finalizedAt sql.NullTime
	)
	err := row.Scan(&rec.ID, &rec.ClientID, &rec.Period, &rec.Bank, &rec.Account, &status, &rec.CreatedAt, &finalizedAt)
	if err != nil {
		return domain.Reconciliation{}, err
	}
	rec.Status = domain.ReconciliationStatus(status)
	rec.FinalizedAt = mapNullTimePtr(finalizedAt)
	return rec, nil
}

func (r *reconciliationsRepo) CreateReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reconciliations (id, client_id, period, bank, account, status, created_at, finalized_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ClientID, rec.Period, rec.Bank, rec.Account, string(rec.Status),
		rec.CreatedAt.UTC(), mapOptionalTime(rec.FinalizedAt),
	)
	return mapConstraint(err)
}

func (r *reconciliationsRepo) GetReconciliation(ctx context.Context, id string) (domain.Reconciliation, error) {
	rec, err := scanReconciliation(r.db.QueryRowContext(ctx,
		`SELECT `+reconciliationColumns+` FROM reconciliations WHERE id = ?`, id))
	if err != nil {
		return domain.Reconciliation{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *reconciliationsRepo) ListReconciliations(ctx context.Context, f store.ReconciliationFilter) ([]domain.Reconciliation, error) {
	var w where
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}
	if f.Period != "" {
		w.add(`period = ?`, f.Period)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reconciliationColumns+` FROM reconciliations`+w.String()+` ORDER BY period DESC, created_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Reconciliation{}
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *reconciliationsRepo) SetReconciliationStatus(ctx context.Context, id string, status domain.ReconciliationStatus, finalizedAt *time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE reconciliations SET status = ?, finalized_at = ? WHERE id = ?`,
		string(status), mapOptionalTime(finalizedAt), id))
}

func (r *reconciliationsRepo) CreateTransactions(ctx context.Context, txs []domain.Transaction) error {
	for i, t := range txs {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO transactions (id, reconciliation_id, position, date, description, tipo, valor, ledger_account_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ReconciliationID, i, dateText(t.Date), t.Description, string(t.Tipo), t.Valor,
			mapStringNull(t.ContaContabilID),
		)
		if err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

const transactionColumns = `t.id, t.reconciliation_id, t.date, t.description, t.tipo, t.valor, t.ledger_account_id`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		t          domain.Transaction
		date, tipo string
		account    sql.NullString
	)
	if err := row.Scan(&t.ID, &t.ReconciliationID, &date, &t.Description, &tipo, &t.Valor, &account); err != nil {
		return domain.Transaction{}, err
	}
	d, err := parseDateText(date)
	if err != nil {
		return domain.Transaction{}, err
	}
	t.Date = d
	t.Tipo = domain.Tipo(tipo)
	t.ContaContabilID = mapNullString(account)
	t.Tag()
	return t, nil
}

func (r *reconciliationsRepo) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id))
	if err != nil {
		return domain.Transaction{}, mapNotFound(err)
	}
	return t, nil
}

func (r *reconciliationsRepo) ListTransactions(ctx context.Context, reconciliationID string) ([]domain.Transaction, error) {
	return r.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.reconciliation_id = ? ORDER BY t.date, t.position`,
		reconciliationID)
}

func (r *reconciliationsRepo) ListClientTransactions(ctx context.Context, clientID, period string) ([]domain.Transaction, error) {
	return r.listTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN reconciliations r ON r.id = t.reconciliation_id
		WHERE r.client_id = ? AND r.period = ?
		ORDER BY t.date, t.position`,
		clientID, period)
}

func (r *reconciliationsRepo) listTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *reconciliationsRepo) UpdateTransaction(ctx context.Context, id, description, contaContabilID string) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, ledger_account_id = ? WHERE id = ?`,
		description, mapStringNull(contaContabilID), id))
}
