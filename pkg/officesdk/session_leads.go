package officesdk

import (
	"context"
	"net/http"
	"net/url"
)

func (s *Session) ListLeads(ctx context.Context, status string) ([]Lead, error) {
	var l List[Lead]
	if err := s.call(ctx, http.MethodGet, withQuery("/v1/leads", url.Values{"status": {status}}), nil, &l, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) CreateLead(ctx context.Context, lead Lead) (*Lead, error) {
	var out Lead
	if err := s.call(ctx, http.MethodPost, "/v1/leads", lead, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetLead(ctx context.Context, id string) (*Lead, error) {
	var out Lead
	if err := s.call(ctx, http.MethodGet, "/v1/leads/"+url.PathEscape(id), nil, &out, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateLead(ctx context.Context, lead Lead) (*Lead, error) {
	var out Lead
	if err := s.call(ctx, http.MethodPut, "/v1/leads/"+url.PathEscape(lead.ID), lead, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteLead(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/leads/"+url.PathEscape(id), nil, nil, http.StatusNoContent, ScopeWrite)
}

// ConvertLead creates a client from the lead and closes it as converted.
func (s *Session) ConvertLead(ctx context.Context, id string, req ConvertLeadRequest) (*ConvertLeadResponse, error) {
	var out ConvertLeadResponse
	if err := s.call(ctx, http.MethodPost, "/v1/leads/"+url.PathEscape(id)+"/convert", req, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}
