package officesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// jsonBody encodes v for a request. A nil v sends no body.
func jsonBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(raw), nil
}

// doRequest performs an unauthenticated JSON request.
func (c *SDKClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	rdr, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// doAuthRequest performs an authenticated request, refreshing the access
// token first when it is about to expire.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
	requiredScopes ...string,
) (*http.Response, error) {
	if err := s.checkScopes(requiredScopes...); err != nil {
		return nil, err
	}

	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// call sends in as JSON and decodes the response into out when the status
// matches expected.
func (s *Session) call(ctx context.Context, method, path string, in, out any, expected int, scopes ...string) error {
	rdr, err := jsonBody(in)
	if err != nil {
		return err
	}
	headers := map[string]string{"Accept": "application/json"}
	if rdr != nil {
		headers["Content-Type"] = "application/json"
	}
	resp, err := s.doAuthRequest(ctx, method, path, rdr, headers, scopes...)
	if err != nil {
		return err
	}
	if out == nil {
		return checkStatus(resp, expected)
	}
	return decodeJSON(resp, out, expected)
}

// decodeJSON decodes a JSON response into target, or returns the typed
// error the body describes.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if perr := parseErrorResponse(resp, bodyBytes); perr != nil {
			return perr
		}
		return &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError}
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatus drains the body and returns a typed error unless the status is
// expected.
func checkStatus(resp *http.Response, expected int) error {
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expected {
		if perr := parseErrorResponse(resp, bodyBytes); perr != nil {
			return perr
		}
		return &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError}
	}
	return nil
}
