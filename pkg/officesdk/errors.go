package officesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the back office API.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeValidationFailed    = "validation_failed"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeConflict            = "conflict"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeInvalidGrant        = "invalid_grant"
	ErrorCodeMFARequired         = "mfa_required"
	ErrorCodeInsufficientScope   = "insufficient_scope"
	ErrorCodeForbidden           = "forbidden"
	ErrorCodePendingTransactions = "pending_transactions"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeTooLarge            = "request_too_large"
	ErrorCodeServerError         = "server_error"
)

// FallbackMessage is shown when the server gave no usable description.
const FallbackMessage = "Não foi possível concluir a operação. Tente novamente."

// ErrPendingTransactions is returned without contacting the server when a
// reconciliation still has unconfirmed lines.
var ErrPendingTransactions = errors.New("reconciliation has pending transactions")

// APIError is any non-2xx response from the API.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Fields      map[string]string

	// Pendentes is set on pending_transactions conflicts.
	Pendentes int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Message is the text to show a user: the server's description or a generic
// fallback.
func (e *APIError) Message() string {
	if e.Description != "" {
		return e.Description
	}
	return FallbackMessage
}

// Is lets errors.Is match a server side refusal to finalize against
// ErrPendingTransactions.
func (e *APIError) Is(target error) bool {
	return target == ErrPendingTransactions && e.Code == ErrorCodePendingTransactions
}

// IsStatus reports whether err is an APIError with one of the given statuses.
func IsStatus(err error, statuses ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.StatusCode == s {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// UserMessage extracts a displayable message from any error.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return FallbackMessage
}

// parseErrorResponse turns an error body into an *APIError. Bodies that are
// not JSON still produce an error carrying the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Error            string            `json:"error"`
		ErrorDescription string            `json:"error_description"`
		Fields           map[string]string `json:"fields"`
		Pendentes        int               `json:"pendentes"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Fields:      errResp.Fields,
			Pendentes:   errResp.Pendentes,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
	}
}
