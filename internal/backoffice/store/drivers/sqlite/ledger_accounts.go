package sqlite

import (
	"context"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
)

type ledgerAccountsRepo struct {
	db dbtx
}

func (r *ledgerAccountsRepo) CreateLedgerAccount(ctx context.Context, a domain.LedgerAccount) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_accounts (id, code, name, kind) VALUES (?, ?, ?, ?)`,
		a.ID, a.Code, a.Name, a.Kind)
	return mapConstraint(err)
}

func (r *ledgerAccountsRepo) GetLedgerAccount(ctx context.Context, id string) (domain.LedgerAccount, error) {
	var a domain.LedgerAccount
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, kind FROM ledger_accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Code, &a.Name, &a.Kind)
	if err != nil {
		return domain.LedgerAccount{}, mapNotFound(err)
	}
	return a, nil
}

func (r *ledgerAccountsRepo) ListLedgerAccounts(ctx context.Context) ([]domain.LedgerAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name, kind FROM ledger_accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LedgerAccount{}
	for rows.Next() {
		var a domain.LedgerAccount
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Kind); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
