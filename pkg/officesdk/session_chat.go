package officesdk

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func (s *Session) ListThreads(ctx context.Context, clientID, status string) ([]Thread, error) {
	var l List[Thread]
	path := withQuery("/v1/chat/threads", url.Values{"client_id": {clientID}, "status": {status}})
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

// CreateThread opens a thread. Portal sessions may leave clientID empty.
func (s *Session) CreateThread(ctx context.Context, clientID, subject string) (*Thread, error) {
	var out Thread
	body := map[string]string{"client_id": clientID, "subject": subject}
	if err := s.call(ctx, http.MethodPost, "/v1/chat/threads", body, &out, http.StatusCreated, ScopeWrite, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Messages(ctx context.Context, threadID string) ([]Message, error) {
	var l List[Message]
	path := "/v1/chat/threads/" + url.PathEscape(threadID) + "/messages"
	if err := s.call(ctx, http.MethodGet, path, nil, &l, http.StatusOK, ScopeRead, ScopePortal); err != nil {
		return nil, err
	}
	return l.Items, nil
}

func (s *Session) PostMessage(ctx context.Context, threadID, body string) (*Message, error) {
	var out Message
	path := "/v1/chat/threads/" + url.PathEscape(threadID) + "/messages"
	if err := s.call(ctx, http.MethodPost, path, map[string]string{"body": body}, &out, http.StatusCreated, ScopeWrite, ScopePortal); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CloseThread(ctx context.Context, threadID string) (*Thread, error) {
	var out Thread
	path := "/v1/chat/threads/" + url.PathEscape(threadID) + "/close"
	if err := s.call(ctx, http.MethodPost, path, nil, &out, http.StatusOK, ScopeWrite); err != nil {
		return nil, err
	}
	return &out, nil
}

// WatchChat follows the chat event stream and calls fn for every
// notification until ctx is done, the server ends the stream or fn returns an
// error. Events missed while disconnected are not replayed, so callers
// refetch after reconnecting.
func (s *Session) WatchChat(ctx context.Context, fn func(ChatEvent) error) error {
	if err := s.checkScopes(ScopeRead, ScopePortal); err != nil {
		return err
	}
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.url("/v1/chat/events"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	// The stream is open ended; only ctx bounds it.
	stream := *s.client.HTTPClient
	stream.Timeout = 0
	resp, err := stream.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return checkStatus(resp, http.StatusOK)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line ends an event.
			if data.Len() == 0 {
				continue
			}
			var ev ChatEvent
			if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
				return fmt.Errorf("failed to decode chat event: %w", err)
			}
			data.Reset()
			if err := fn(ev); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	return ctx.Err()
}
