package officesdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// StartMEI opens a draft registration, optionally for a lead.
func (s *Session) StartMEI(ctx context.Context, leadID string) (*MEIRegistration, error) {
	var body any
	if leadID != "" {
		body = map[string]string{"lead_id": leadID}
	}
	var out MEIRegistration
	if err := s.call(ctx, http.MethodPost, "/v1/mei", body, &out, http.StatusCreated, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetMEI(ctx context.Context, id string) (*MEIRegistration, error) {
	var out MEIRegistration
	if err := s.call(ctx, http.MethodGet, "/v1/mei/"+url.PathEscape(id), nil, &out, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListMEI(ctx context.Context, status string) ([]MEIRegistration, error) {
	var l List[MEIRegistration]
	if err := s.call(ctx, http.MethodGet, withQuery("/v1/mei", url.Values{"status": {status}}), nil, &l, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return l.Items, nil
}

// SaveMEIStep stores the payload of step n. Validation failures come back as
// an *APIError whose Fields name the offending inputs.
func (s *Session) SaveMEIStep(ctx context.Context, id string, n int, payload any) (*MEIRegistration, error) {
	var out MEIRegistration
	path := "/v1/mei/" + url.PathEscape(id) + "/steps/" + strconv.Itoa(n)
	if err := s.call(ctx, http.MethodPut, path, payload, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SubmitMEI(ctx context.Context, id string) (*MEIRegistration, error) {
	var out MEIRegistration
	if err := s.call(ctx, http.MethodPost, "/v1/mei/"+url.PathEscape(id)+"/submit", nil, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetMEIStatus moves a submitted registration forward. reason is required
// when rejecting.
func (s *Session) SetMEIStatus(ctx context.Context, id, status, reason string) (*MEIRegistration, error) {
	var out MEIRegistration
	body := map[string]string{"status": status, "reason": reason}
	if err := s.call(ctx, http.MethodPost, "/v1/mei/"+url.PathEscape(id)+"/status", body, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// MEIStepSchema fetches the JSON Schema of a wizard step.
func (s *Session) MEIStepSchema(ctx context.Context, step int) (json.RawMessage, error) {
	var out json.RawMessage
	if err := s.call(ctx, http.MethodGet, "/v1/mei/schema/"+strconv.Itoa(step), nil, &out, http.StatusOK, ScopeRead); err != nil {
		return nil, err
	}
	return out, nil
}
