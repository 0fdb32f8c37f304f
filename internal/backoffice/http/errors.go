package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

// PendingResponse is the 409 body of a refused finalize.
type PendingResponse struct {
	httpx.ErrorResponse
	Pendentes int `json:"pendentes"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Ordered: the first match wins.
var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, httpx.CodeInvalidGrant},
	{service.ErrInvalidRefresh, http.StatusUnauthorized, httpx.CodeInvalidGrant},
	{service.ErrMFARequired, http.StatusUnauthorized, httpx.CodeMFARequired},
	{service.ErrInvalidTOTPCode, http.StatusUnauthorized, httpx.CodeInvalidGrant},
	{service.ErrMFAStaffOnly, http.StatusForbidden, httpx.CodeForbidden},
	{service.ErrForbidden, http.StatusForbidden, httpx.CodeForbidden},

	{service.ErrUserNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrClientNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrInvoiceNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrReconciliationNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrTransactionNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrLedgerAccountNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrGuiaNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrLeadNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrLicenseNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrThreadNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrRegistrationNotFound, http.StatusNotFound, httpx.CodeNotFound},
	{service.ErrUnknownStep, http.StatusNotFound, httpx.CodeNotFound},

	{service.ErrMFAAlreadyEnabled, http.StatusConflict, httpx.CodeConflict},
	{service.ErrMFANotEnrolled, http.StatusConflict, httpx.CodeConflict},
	{service.ErrUsernameTaken, http.StatusConflict, httpx.CodeConflict},
	{service.ErrDuplicateDocument, http.StatusConflict, httpx.CodeConflict},
	{service.ErrClientHasDependents, http.StatusConflict, httpx.CodeConflict},
	{service.ErrInvoiceNotEditable, http.StatusConflict, httpx.CodeConflict},
	{service.ErrInvalidTransition, http.StatusConflict, httpx.CodeConflict},
	{service.ErrQuoteNotAccepted, http.StatusConflict, httpx.CodeConflict},
	{service.ErrQuoteConverted, http.StatusConflict, httpx.CodeConflict},
	{service.ErrReconciliationExists, http.StatusConflict, httpx.CodeConflict},
	{service.ErrReconciliationFinalized, http.StatusConflict, httpx.CodeConflict},
	{service.ErrReconciliationNotFinalized, http.StatusConflict, httpx.CodeConflict},
	{service.ErrDuplicateLedgerCode, http.StatusConflict, httpx.CodeConflict},
	{service.ErrGuiaClosed, http.StatusConflict, httpx.CodeConflict},
	{service.ErrLeadClosed, http.StatusConflict, httpx.CodeConflict},
	{service.ErrThreadClosed, http.StatusConflict, httpx.CodeConflict},
	{service.ErrStepOutOfOrder, http.StatusConflict, httpx.CodeConflict},
	{service.ErrRegistrationIncomplete, http.StatusConflict, httpx.CodeConflict},
	{service.ErrRegistrationLocked, http.StatusConflict, httpx.CodeConflict},

	{service.ErrInvalidImport, http.StatusBadRequest, httpx.CodeInvalidRequest},
}

// writeServiceError renders err. Unknown errors are logged and hidden behind
// a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
			Error:            httpx.CodeValidation,
			ErrorDescription: ve.Error(),
			Fields:           ve.Fields,
		})
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, httpx.CodeTooLarge, "request body too large")
		return
	}

	var pending *service.PendingTransactionsError
	if errors.As(err, &pending) {
		httpx.WriteJSON(w, http.StatusConflict, PendingResponse{
			ErrorResponse: httpx.ErrorResponse{
				Error:            "pending_transactions",
				ErrorDescription: pending.Error(),
			},
			Pendentes: pending.Count,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			httpx.WriteError(w, m.status, m.code, err.Error())
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
	httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeServerError, "internal server error")
}
