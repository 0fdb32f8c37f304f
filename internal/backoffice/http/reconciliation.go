package http

import (
	"mime"
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
)

type ReconciliationHandler struct {
	ReconciliationService *service.ReconciliationService
}

// ConfirmRequest links a statement line to a ledger account.
type ConfirmRequest struct {
	TransacaoID     string `json:"transacaoId"`
	ContaContabilID string `json:"contaContabilId"`
}

// HandleCreate handles POST /v1/reconciliations
//
//	@Summary	Open a reconciliation for a client and month
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.Reconciliation	true	"client_id, period, bank, account"
//	@Success	201		{object}	domain.Reconciliation
//	@Failure	409		{object}	httpx.ErrorResponse	"already exists"
//	@Router		/v1/reconciliations [post].
func (h *ReconciliationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var rec domain.Reconciliation
	if !httpx.DecodeJSON(w, r, &rec) {
		return
	}
	rec, err := h.ReconciliationService.Create(r.Context(), rec)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

// HandleList handles GET /v1/reconciliations
//
//	@Summary	List reconciliations
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Produce	json
//	@Param		client_id	query		string	false	"Client ID"
//	@Param		period		query		string	false	"YYYY-MM"
//	@Param		status		query		string	false	"open or finalized"
//	@Success	200			{object}	listResponse[domain.Reconciliation]
//	@Router		/v1/reconciliations [get].
func (h *ReconciliationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.ReconciliationService.List(r.Context(), actorFrom(r), store.ReconciliationFilter{
		ClientID: query(r, "client_id"),
		Period:   query(r, "period"),
		Status:   domain.ReconciliationStatus(query(r, "status")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(list))
}

// HandleDetail handles GET /v1/reconciliations/{id}
//
//	@Summary	Reconciliation with tagged transactions and totals
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Reconciliation ID"
//	@Success	200	{object}	domain.ReconciliationDetail
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/v1/reconciliations/{id} [get].
func (h *ReconciliationHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.ReconciliationService.Detail(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleLegacyGet handles GET /reconciliation/{id}. The old contract returns
// the header only; clients fetch the lines separately.
//
//	@Summary	Reconciliation header (legacy)
//	@Tags		Reconciliation (legacy)
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Reconciliation ID"
//	@Success	200	{object}	domain.Reconciliation
//	@Router		/reconciliation/{id} [get].
func (h *ReconciliationHandler) HandleLegacyGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.ReconciliationService.Detail(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d.Reconciliation)
}

// HandleTransactions handles GET /v1/reconciliations/{id}/transactions
//
//	@Summary	Statement lines of a reconciliation
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Reconciliation ID"
//	@Success	200	{object}	listResponse[domain.Transaction]
//	@Router		/v1/reconciliations/{id}/transactions [get].
func (h *ReconciliationHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ReconciliationService.Transactions(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(txs))
}

// HandleLegacyTransactions handles GET /conciliacao/{id}/transacoes and
// answers with a bare array.
//
//	@Summary	Statement lines (legacy)
//	@Tags		Reconciliation (legacy)
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path	string	true	"Reconciliation ID"
//	@Success	200	{array}	domain.Transaction
//	@Router		/conciliacao/{id}/transacoes [get].
func (h *ReconciliationHandler) HandleLegacyTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ReconciliationService.Transactions(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

// HandleImport handles POST /v1/reconciliations/{id}/transactions
//
// The body is either a JSON array of lines or a bank statement CSV
// (Content-Type text/csv). The import is all-or-nothing.
//
//	@Summary	Import statement lines
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Accept		json,text/csv
//	@Produce	json
//	@Param		id		path		string					true	"Reconciliation ID"
//	@Param		request	body		[]domain.Transaction	true	"Lines"
//	@Success	200		{object}	domain.ReconciliationDetail
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse	"finalized"
//	@Router		/v1/reconciliations/{id}/transactions [post].
func (h *ReconciliationHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var lines []domain.Transaction
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		parsed, err := service.ParseStatementCSV(r.Body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		lines = parsed
	} else if !httpx.DecodeJSON(w, r, &lines) {
		return
	}

	d, err := h.ReconciliationService.Import(r.Context(), r.PathValue("id"), lines)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleConfirm handles POST /v1/reconciliations/transactions/confirm and the
// legacy POST /conciliacao/confirmar.
//
//	@Summary	Confirm a transaction against a ledger account
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ConfirmRequest	true	"Transaction and account"
//	@Success	200		{object}	domain.Transaction
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse	"finalized"
//	@Router		/v1/reconciliations/transactions/confirm [post].
func (h *ReconciliationHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if req.TransacaoID == "" {
		writeServiceError(w, r, domain.NewValidationError("transacaoId", "is required"))
		return
	}
	tx, err := h.ReconciliationService.Confirm(r.Context(), req.TransacaoID, req.ContaContabilID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

// HandleUpdateTransaction handles PUT /v1/reconciliations/transactions/{id}
// and the legacy PUT /conciliacao/transacao/{id}.
//
//	@Summary	Edit a transaction
//	@Description	An empty contaContabilId returns the line to pending.
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Transaction ID"
//	@Param		request	body		service.TransactionUpdate	true	"Fields to change"
//	@Success	200		{object}	domain.Transaction
//	@Router		/v1/reconciliations/transactions/{id} [put].
func (h *ReconciliationHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var u service.TransactionUpdate
	if !httpx.DecodeJSON(w, r, &u) {
		return
	}
	tx, err := h.ReconciliationService.UpdateTransaction(r.Context(), r.PathValue("id"), u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

// HandleFinalize handles POST /v1/reconciliations/{id}/finalize and the
// legacy POST /conciliacao/{id}/finalizar.
//
//	@Summary	Finalize a reconciliation
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Reconciliation ID"
//	@Success	200	{object}	domain.ReconciliationDetail
//	@Failure	409	{object}	PendingResponse	"pending transactions"
//	@Router		/v1/reconciliations/{id}/finalize [post].
func (h *ReconciliationHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	d, err := h.ReconciliationService.Finalize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

// HandleReopen handles POST /v1/reconciliations/{id}/reopen
//
//	@Summary	Reopen a finalized reconciliation
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Reconciliation ID"
//	@Success	200	{object}	domain.Reconciliation
//	@Router		/v1/reconciliations/{id}/reopen [post].
func (h *ReconciliationHandler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	rec, err := h.ReconciliationService.Reopen(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rec)
}

// HandleListLedgerAccounts handles GET /v1/ledger-accounts
//
//	@Summary	Chart of accounts
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	listResponse[domain.LedgerAccount]
//	@Router		/v1/ledger-accounts [get].
func (h *ReconciliationHandler) HandleListLedgerAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ReconciliationService.LedgerAccounts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(accounts))
}

// HandleCreateLedgerAccount handles POST /v1/ledger-accounts
//
//	@Summary	Add a ledger account
//	@Tags		Reconciliation
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.LedgerAccount	true	"Account"
//	@Success	201		{object}	domain.LedgerAccount
//	@Failure	409		{object}	httpx.ErrorResponse	"duplicate code"
//	@Router		/v1/ledger-accounts [post].
func (h *ReconciliationHandler) HandleCreateLedgerAccount(w http.ResponseWriter, r *http.Request) {
	var a domain.LedgerAccount
	if !httpx.DecodeJSON(w, r, &a) {
		return
	}
	a, err := h.ReconciliationService.CreateLedgerAccount(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}
