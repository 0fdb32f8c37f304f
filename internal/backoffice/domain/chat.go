package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type ThreadStatus string

const (
	ThreadOpen   ThreadStatus = "open"
	ThreadClosed ThreadStatus = "closed"
)

// MaxMessageLength bounds a chat message body in characters.
const MaxMessageLength = 4000

type Thread struct {
	ID            string       `json:"id"`
	ClientID      string       `json:"client_id"`
	Subject       string       `json:"subject"`
	Status        ThreadStatus `json:"status"`
	CreatedBy     string       `json:"created_by"`
	LastMessageAt *time.Time   `json:"last_message_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type Message struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidateMessageBody trims and bounds a message body.
func ValidateMessageBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return "", NewValidationError("body", "is required")
	case utf8.RuneCountInString(body) > MaxMessageLength:
		return "", NewValidationError("body", "must be at most 4000 characters")
	}
	return body, nil
}

type ChatEventType string

const (
	ChatEventMessage ChatEventType = "message"
	ChatEventThread  ChatEventType = "thread"
)

// ChatEvent tells subscribers that something changed; they refetch.
type ChatEvent struct {
	Type     ChatEventType `json:"type"`
	ThreadID string        `json:"thread_id"`
	ClientID string        `json:"-"`
}
