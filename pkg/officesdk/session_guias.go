package officesdk

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

func (s *Session) ListGuias(ctx context.Context, clientID, status, competence string) ([]Guia, error) {
	var l List[Guia]
	path := withQuery("/v1/guias", url.Values{"client_id": {clientID}, "status": {status}, "competence": {competence}})
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) CreateGuia(ctx context.Context, g Guia) (*Guia, error) {
	var out Guia
	if err := s.call(ctx, http.MethodPost, "/v1/guias", g, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetGuia(ctx context.Context, id string) (*Guia, error) {
	var out Guia
	if err := s.call(ctx, http.MethodGet, "/v1/guias/"+url.PathEscape(id), nil, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateGuia(ctx context.Context, g Guia) (*Guia, error) {
	var out Guia
	if err := s.call(ctx, http.MethodPut, "/v1/guias/"+url.PathEscape(g.ID), g, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteGuia(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/guias/"+url.PathEscape(id), nil, nil, http.StatusNoContent, ScopeWrite)
}

// PayGuia records a payment. A zero paidAt lets the server use its clock.
func (s *Session) PayGuia(ctx context.Context, id string, paidAt time.Time) (*Guia, error) {
	body := map[string]any{}
	if !paidAt.IsZero() {
		body["paid_at"] = paidAt
	}
	var out Guia
	if err := s.call(ctx, http.MethodPost, "/v1/guias/"+url.PathEscape(id)+"/pay", body, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CancelGuia(ctx context.Context, id string) (*Guia, error) {
	var out Guia
	if err := s.call(ctx, http.MethodPost, "/v1/guias/"+url.PathEscape(id)+"/cancel", nil, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// EstimateDAS asks for the month's DAS given the revenue history.
func (s *Session) EstimateDAS(ctx context.Context, annex string, revenue12m, revenueMonth decimal.Decimal) (*DASEstimate, error) {
	body := map[string]any{"annex": annex, "revenue_12m": revenue12m, "revenue_month": revenueMonth}
	var out DASEstimate
	if err := s.call(ctx, http.MethodPost, "/v1/guias/das/estimate", body, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}
