package officesdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// withQuery appends the non-empty values of q to path.
func withQuery(path string, q url.Values) string {
	for k, v := range q {
		if len(v) == 0 || v[0] == "" {
			q.Del(k)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (s *Session) ListClients(ctx context.Context, status, search string) ([]Client, error) {
	var l List[Client]
	path := withQuery("/v1/clients", url.Values{"status": {status}, "q": {search}})
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) CreateClient(ctx context.Context, c Client) (*Client, error) {
	var out Client
	if err := s.call(ctx, http.MethodPost, "/v1/clients", c, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetClient(ctx context.Context, id string) (*Client, error) {
	var out Client
	if err := s.call(ctx, http.MethodGet, "/v1/clients/"+url.PathEscape(id), nil, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateClient(ctx context.Context, c Client) (*Client, error) {
	var out Client
	if err := s.call(ctx, http.MethodPut, "/v1/clients/"+url.PathEscape(c.ID), c, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteClient(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/clients/"+url.PathEscape(id), nil, nil, http.StatusNoContent, ScopeWrite)
}

// ClientSummary returns the month's totals for a client. An empty period
// means the current month.
func (s *Session) ClientSummary(ctx context.Context, id, period string) (*ClientSummary, error) {
	var out ClientSummary
	path := withQuery("/v1/clients/"+url.PathEscape(id)+"/summary", url.Values{"period": {period}})
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

// FatorR computes the payroll ratio and the resulting Simples annex.
func (s *Session) FatorR(ctx context.Context, id string, payroll12m, revenue12m decimal.Decimal) (*FatorRResult, error) {
	var out FatorRResult
	path := withQuery("/v1/clients/"+url.PathEscape(id)+"/fator-r", url.Values{
		"payroll": {payroll12m.String()},
		"revenue": {revenue12m.String()},
	})
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}
