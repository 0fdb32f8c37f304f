package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrMFARequired        = errors.New("mfa_required")
	ErrInvalidTOTPCode    = errors.New("invalid TOTP code")
	ErrMFAAlreadyEnabled  = errors.New("MFA already enabled for this user")
	ErrMFANotEnrolled     = errors.New("MFA not enrolled, call enroll first")
	ErrMFAStaffOnly       = errors.New("MFA is only available to staff accounts")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrForbidden          = errors.New("forbidden")
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrDuplicateDocument   = errors.New("a client with this document already exists")
	ErrClientHasDependents = errors.New("client has invoices, reconciliations, guias, licenses or chats")
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceNotEditable = errors.New("only draft documents can be changed")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrQuoteNotAccepted   = errors.New("only accepted quotes can be converted")
	ErrQuoteConverted     = errors.New("quote already converted")
)

var (
	ErrReconciliationNotFound     = errors.New("reconciliation not found")
	ErrReconciliationExists       = errors.New("a reconciliation for this client, period and account already exists")
	ErrReconciliationFinalized    = errors.New("reconciliation is finalized")
	ErrReconciliationNotFinalized = errors.New("reconciliation is not finalized")
	ErrTransactionNotFound        = errors.New("transaction not found")
	ErrLedgerAccountNotFound      = errors.New("ledger account not found")
	ErrDuplicateLedgerCode        = errors.New("a ledger account with this code already exists")
	ErrPendingTransactions        = errors.New("pending_transactions")
	ErrInvalidImport              = errors.New("invalid statement file")
)

// PendingTransactionsError refuses a finalize and carries how many lines are
// still unconfirmed.
type PendingTransactionsError struct {
	Count int
}

func (e *PendingTransactionsError) Error() string {
	return fmt.Sprintf("%d transactions are still pending", e.Count)
}

func (e *PendingTransactionsError) Is(target error) bool {
	return target == ErrPendingTransactions
}

var (
	ErrGuiaNotFound = errors.New("guia not found")
	ErrGuiaClosed   = errors.New("paid or cancelled guias cannot change")
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrLeadClosed   = errors.New("converted or lost leads cannot change")
)

var ErrLicenseNotFound = errors.New("license not found")

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrThreadClosed   = errors.New("thread is closed")
)

var (
	ErrRegistrationNotFound   = errors.New("registration not found")
	ErrStepOutOfOrder         = errors.New("previous steps must be completed first")
	ErrUnknownStep            = errors.New("unknown step")
	ErrRegistrationIncomplete = errors.New("steps 1 to 3 must be completed before submitting")
	ErrRegistrationLocked     = errors.New("registration was already submitted")
)
