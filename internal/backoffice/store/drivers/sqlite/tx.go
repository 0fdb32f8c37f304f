package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                     { return &usersRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens     { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) Clients() store.Clients                 { return &clientsRepo{db: t.tx} }
func (t *txStore) Invoices() store.Invoices               { return &invoicesRepo{db: t.tx} }
func (t *txStore) Reconciliations() store.Reconciliations { return &reconciliationsRepo{db: t.tx} }
func (t *txStore) LedgerAccounts() store.LedgerAccounts   { return &ledgerAccountsRepo{db: t.tx} }
func (t *txStore) Guias() store.Guias                     { return &guiasRepo{db: t.tx} }
func (t *txStore) Leads() store.Leads                     { return &leadsRepo{db: t.tx} }
func (t *txStore) Licenses() store.Licenses               { return &licensesRepo{db: t.tx} }
func (t *txStore) Chat() store.Chat                       { return &chatRepo{db: t.tx} }
func (t *txStore) MEI() store.MEI                         { return &meiRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
