package officesdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListLicenses filters by client and by computed status (valid, expiring,
// expired).
func (s *Session) ListLicenses(ctx context.Context, clientID, status string) ([]License, error) {
	var l List[License]
	path := withQuery("/v1/licenses", url.Values{"client_id": {clientID}, "status": {status}})
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) CreateLicense(ctx context.Context, lic License) (*License, error) {
	var out License
	if err := s.call(ctx, http.MethodPost, "/v1/licenses", lic, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetLicense(ctx context.Context, id string) (*License, error) {
	var out License
	if err := s.call(ctx, http.MethodGet, "/v1/licenses/"+url.PathEscape(id), nil, &out, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateLicense(ctx context.Context, lic License) (*License, error) {
	var out License
	if err := s.call(ctx, http.MethodPut, "/v1/licenses/"+url.PathEscape(lic.ID), lic, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteLicense(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/licenses/"+url.PathEscape(id), nil, nil, http.StatusNoContent, ScopeWrite)
}
