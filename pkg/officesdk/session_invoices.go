package officesdk

import (
	"context"
	"net/http"
	"net/url"
)

func (s *Session) ListInvoices(ctx context.Context, clientID, kind, status string) ([]Invoice, error) {
	var l List[Invoice]
	path := withQuery("/v1/invoices", url.Values{"client_id": {clientID}, "kind": {kind}, "status": {status}})
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) CreateInvoice(ctx context.Context, in InvoiceInput) (*Invoice, error) {
	var out Invoice
	if err := s.call(ctx, http.MethodPost, "/v1/invoices", in, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var out Invoice
	if err := s.call(ctx, http.MethodGet, "/v1/invoices/"+url.PathEscape(id), nil, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateInvoice(ctx context.Context, id string, in InvoiceInput) (*Invoice, error) {
	var out Invoice
	if err := s.call(ctx, http.MethodPut, "/v1/invoices/"+url.PathEscape(id), in, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteInvoice(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/invoices/"+url.PathEscape(id), nil, nil, http.StatusNoContent, ScopeWrite)
}

// SetInvoiceStatus moves a document along its lifecycle.
func (s *Session) SetInvoiceStatus(ctx context.Context, id, status string) (*Invoice, error) {
	var out Invoice
	path := "/v1/invoices/" + url.PathEscape(id) + "/status"
	if err := s.call(ctx, http.MethodPost, path, map[string]string{"status": status}, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvertQuote turns an accepted quote into a new draft invoice.
func (s *Session) ConvertQuote(ctx context.Context, id string) (*Invoice, error) {
	var out Invoice
	path := "/v1/invoices/" + url.PathEscape(id) + "/convert"
	if err := s.call(ctx, http.MethodPost, path, nil, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}
