package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes shared by every endpoint. The UI shows error_description as-is
// and falls back to a generic message when it is empty.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeValidation        = "validation_failed"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInvalidToken      = "invalid_token"
	CodeInvalidGrant      = "invalid_grant"
	CodeMFARequired       = "mfa_required"
	CodeInsufficientScope = "insufficient_scope"
	CodeForbidden         = "forbidden"
	CodeTooLarge          = "request_too_large"
	CodeRateLimited       = "rate_limit_exceeded"
	CodeServerError       = "server_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as JSON with the given status and no-store caching.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	WriteJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// NoCache disables caching; every payload here is client specific.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON decodes the request body into v. On failure it writes a 400, or
// a 413 when RequestBodyLimit tripped, and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "request body too large")
			return false
		}
		WriteError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}
