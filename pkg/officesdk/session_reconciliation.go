package officesdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
)

func (s *Session) CreateReconciliation(ctx context.Context, r Reconciliation) (*Reconciliation, error) {
	var out Reconciliation
	if err := s.call(ctx, http.MethodPost, "/v1/reconciliations", r, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListReconciliations(ctx context.Context, clientID, period, status string) ([]Reconciliation, error) {
	var l List[Reconciliation]
	path := withQuery("/v1/reconciliations", url.Values{"client_id": {clientID}, "period": {period}, "status": {status}})
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

// GetReconciliationDetail loads a reconciliation with its tagged lines and
// totals. When the consolidated endpoint fails for any reason it retries
// against the two legacy endpoints and computes the summary locally.
func (s *Session) GetReconciliationDetail(ctx context.Context, id string) (*ReconciliationDetail, error) {
	var d ReconciliationDetail
	err := s.call(ctx, http.MethodGet, "/v1/reconciliations/"+url.PathEscape(id), nil, &d, http.StatusOK, ScopeRead, ScopePortal)
	if err == nil {
		return &d, nil
	}

	legacy, lerr := s.legacyReconciliationDetail(ctx, id)
	if lerr != nil {
		return nil, errors.Join(err, lerr)
	}
	return legacy, nil
}

func (s *Session) legacyReconciliationDetail(ctx context.Context, id string) (*ReconciliationDetail, error) {
	var d ReconciliationDetail
	if err := s.call(ctx, http.MethodGet, "/reconciliation/"+url.PathEscape(id), nil, &d.Reconciliation, http.StatusOK); err != nil {
		return nil, err
	}
	var txs []Transaction
	if err := s.call(ctx, http.MethodGet, "/conciliacao/"+url.PathEscape(id)+"/transacoes", nil, &txs, http.StatusOK); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []Transaction{}
	}
	TagTransactions(txs)
	d.Transacoes = txs
	d.Resumo, d.Totais = Summarize(txs)
	return &d, nil
}

func (s *Session) ReconciliationTransactions(ctx context.Context, id string) ([]Transaction, error) {
	var l List[Transaction]
	path := "/v1/reconciliations/" + url.PathEscape(id) + "/transactions"
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

// ImportTransactions appends lines to an open reconciliation. Nothing is
// stored when any line is invalid.
func (s *Session) ImportTransactions(ctx context.Context, id string, lines []Transaction) (*ReconciliationDetail, error) {
	var out ReconciliationDetail
	path := "/v1/reconciliations/" + url.PathEscape(id) + "/transactions"
	if err := s.call(ctx, http.MethodPost, path, lines, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportStatementCSV uploads a bank statement export as is.
func (s *Session) ImportStatementCSV(ctx context.Context, id string, csv io.Reader) (*ReconciliationDetail, error) {
	path := "/v1/reconciliations/" + url.PathEscape(id) + "/transactions"
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path, csv, map[string]string{
		"Content-Type": "text/csv",
		"Accept":       "application/json",
	}, ScopeWrite)
	if err != nil {
		return nil, err
	}
	var out ReconciliationDetail
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmTransaction links a line to a ledger account.
func (s *Session) ConfirmTransaction(ctx context.Context, transactionID, accountID string) (*Transaction, error) {
	var out Transaction
	body := map[string]string{"transacaoId": transactionID, "contaContabilId": accountID}
	if err := s.call(ctx, http.MethodPost, "/v1/reconciliations/transactions/confirm", body, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTransaction edits a line. Servers without the edit route answer 404
// or 405; when the update links an account the call then falls back to the
// confirm endpoint.
func (s *Session) UpdateTransaction(ctx context.Context, id string, u TransactionUpdate) (*Transaction, error) {
	var out Transaction
	err := s.call(ctx, http.MethodPut, "/v1/reconciliations/transactions/"+url.PathEscape(id), u, &out, http.StatusOK, ScopeWrite)
	if err == nil {
		return &out, nil
	}
	if IsStatus(err, http.StatusNotFound, http.StatusMethodNotAllowed) && u.ContaContabilID != nil && *u.ContaContabilID != "" {
		return s.ConfirmTransaction(ctx, id, *u.ContaContabilID)
	}
	return nil, err
}

// FinalizeReconciliation closes the month. A detail that still shows
// pending lines is refused here and no request is sent.
func (s *Session) FinalizeReconciliation(ctx context.Context, d *ReconciliationDetail) (*ReconciliationDetail, error) {
	if d.Resumo.Pendentes > 0 {
		return nil, fmt.Errorf("%w: %d pendente(s)", ErrPendingTransactions, d.Resumo.Pendentes)
	}
	var out ReconciliationDetail
	path := "/v1/reconciliations/" + url.PathEscape(d.ID) + "/finalize"
	if err := s.call(ctx, http.MethodPost, path, nil, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReopenReconciliation undoes a finalize. Admin only.
func (s *Session) ReopenReconciliation(ctx context.Context, id string) (*Reconciliation, error) {
	var out Reconciliation
	if err := s.call(ctx, http.MethodPost, "/v1/reconciliations/"+url.PathEscape(id)+"/reopen", nil, &out, http.StatusOK, ScopeAdmin); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) LedgerAccounts(ctx context.Context) ([]LedgerAccount, error) {
	var l List[LedgerAccount]
	if err := s.call(ctx, http.MethodGet, "/v1/ledger-accounts", nil, &l, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) CreateLedgerAccount(ctx context.Context, a LedgerAccount) (*LedgerAccount, error) {
	var out LedgerAccount
	if err := s.call(ctx, http.MethodPost, "/v1/ledger-accounts", a, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReconciliationView is everything the review screen shows. Each part
// carries its own error.
type ReconciliationView struct {
	Detail    *ReconciliationDetail
	DetailErr error

	Accounts    []LedgerAccount
	AccountsErr error
}

// LoadReconciliationView fetches the detail and the chart of accounts in
// parallel and waits for both, whatever the outcome of the other.
func (s *Session) LoadReconciliationView(ctx context.Context, id string) ReconciliationView {
	var (
		v ReconciliationView
		g errgroup.Group
	)
	g.Go(func() error {
		v.Detail, v.DetailErr = s.GetReconciliationDetail(ctx, id)
		return nil
	})
	g.Go(func() error {
		v.Accounts, v.AccountsErr = s.LedgerAccounts(ctx)
		return nil
	})
	_ = g.Wait()
	return v
}
