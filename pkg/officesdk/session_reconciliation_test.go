package officesdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const staffScopes = "backoffice:read backoffice:write admin"

func newTestSession(t *testing.T, h http.Handler) *Session {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL).NewSessionFromTokens("access", "refresh", staffScopes, 3600)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetReconciliationDetailFallsBackToLegacy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/reconciliations/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
	})
	mux.HandleFunc("GET /reconciliation/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Reconciliation{ID: r.PathValue("id"), ClientID: "c1", Period: "2026-03", Status: "open"})
	})
	mux.HandleFunc("GET /conciliacao/{id}/transacoes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Transaction{
			{ID: "t1", Tipo: TipoCredito, Valor: decimal.NewFromInt(100), ContaContabilID: "acc"},
			{ID: "t2", Tipo: TipoDebito, Valor: decimal.NewFromInt(40)},
		})
	})
	s := newTestSession(t, mux)

	d, err := s.GetReconciliationDetail(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, "r1", d.ID)
	require.Equal(t, StatusConfirmed, d.Transacoes[0].Status)
	require.Equal(t, StatusPending, d.Transacoes[1].Status)
	require.Equal(t, ResumoTransacoes{Total: 2, Confirmadas: 1, Pendentes: 1}, d.Resumo)
	require.True(t, d.Totais.TotalCreditos.Equal(decimal.NewFromInt(100)))
	require.True(t, d.Totais.TotalDebitos.Equal(decimal.NewFromInt(40)))
	require.True(t, d.Totais.SaldoFinal.Equal(decimal.NewFromInt(60)))
}

func TestGetReconciliationDetailBothFail(t *testing.T) {
	s := newTestSession(t, http.NotFoundHandler())

	_, err := s.GetReconciliationDetail(context.Background(), "r1")
	require.Error(t, err)
	require.True(t, IsNotFound(err))
}

func TestUpdateTransactionFallsBackToConfirm(t *testing.T) {
	var confirmed atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/reconciliations/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	mux.HandleFunc("POST /v1/reconciliations/transactions/confirm", func(w http.ResponseWriter, r *http.Request) {
		confirmed.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, Transaction{ID: body["transacaoId"], ContaContabilID: body["contaContabilId"], Status: StatusConfirmed})
	})
	s := newTestSession(t, mux)
	ctx := context.Background()

	account := "acc-1"
	tx, err := s.UpdateTransaction(ctx, "t1", TransactionUpdate{ContaContabilID: &account})
	require.NoError(t, err)
	require.Equal(t, "t1", tx.ID)
	require.Equal(t, StatusConfirmed, tx.Status)
	require.EqualValues(t, 1, confirmed.Load())

	t.Run("no account means no fallback", func(t *testing.T) {
		desc := "Aluguel março"
		_, err := s.UpdateTransaction(ctx, "t1", TransactionUpdate{Description: &desc})
		require.True(t, IsNotFound(err))
		require.EqualValues(t, 1, confirmed.Load())
	})
}

func TestUpdateTransactionKeepsOtherErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/reconciliations/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict", "error_description": "reconciliation is finalized"})
	})
	s := newTestSession(t, mux)

	account := "acc-1"
	_, err := s.UpdateTransaction(context.Background(), "t1", TransactionUpdate{ContaContabilID: &account})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "reconciliation is finalized", apiErr.Message())
}

func TestFinalizeReconciliationGuard(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/reconciliations/{id}/finalize", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":             "pending_transactions",
			"error_description": "1 transaction(s) still pending",
			"pendentes":         1,
		})
	})
	s := newTestSession(t, mux)
	ctx := context.Background()

	d := &ReconciliationDetail{Reconciliation: Reconciliation{ID: "r1"}, Resumo: ResumoTransacoes{Total: 3, Pendentes: 2}}
	_, err := s.FinalizeReconciliation(ctx, d)
	require.ErrorIs(t, err, ErrPendingTransactions)
	require.Zero(t, calls.Load())

	// The server disagrees with a stale detail.
	d.Resumo.Pendentes = 0
	_, err = s.FinalizeReconciliation(ctx, d)
	require.ErrorIs(t, err, ErrPendingTransactions)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 1, apiErr.Pendentes)
	require.EqualValues(t, 1, calls.Load())
}

func TestLoadReconciliationViewSettlesBoth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/reconciliations/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ReconciliationDetail{
			Reconciliation: Reconciliation{ID: r.PathValue("id")},
			Transacoes:     []Transaction{},
		})
	})
	mux.HandleFunc("GET /v1/ledger-accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	s := newTestSession(t, mux)

	v := s.LoadReconciliationView(context.Background(), "r1")
	require.NoError(t, v.DetailErr)
	require.Equal(t, "r1", v.Detail.ID)
	require.Error(t, v.AccountsErr)
	require.True(t, IsStatus(v.AccountsErr, http.StatusBadGateway))
	require.Equal(t, FallbackMessage, UserMessage(v.AccountsErr))
	require.Nil(t, v.Accounts)
}

func TestSummarizeEmpty(t *testing.T) {
	r, tot := Summarize(nil)
	require.Equal(t, ResumoTransacoes{}, r)
	require.True(t, tot.SaldoFinal.IsZero())
}

func TestCheckScopes(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer srv.Close()
	s := NewSDKClient(srv.URL).NewSessionFromTokens("access", "refresh", "portal", 3600)

	_, err := s.CreateClient(context.Background(), Client{Name: "X"})
	require.Error(t, err)
	require.False(t, errors.As(err, new(*APIError)))
	require.Zero(t, calls.Load())
}
