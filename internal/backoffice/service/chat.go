package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

type ChatService struct {
	Store store.Store
	Hub   *Hub
}

// CreateThread opens a support thread. Portal users always open threads for
// their own client.
func (s *ChatService) CreateThread(ctx context.Context, actor Actor, clientID, subject string) (domain.Thread, error) {
	clientID = actor.scope(strings.TrimSpace(clientID))
	subject = strings.TrimSpace(subject)

	v := &domain.ValidationError{}
	v.Require("client_id", clientID)
	v.Require("subject", subject)
	if len(subject) > 200 {
		v.Add("subject", "must be at most 200 characters")
	}
	if err := v.Err(); err != nil {
		return domain.Thread{}, err
	}
	if err := clientMustExist(ctx, s.Store, clientID); err != nil {
		return domain.Thread{}, err
	}

	t := domain.Thread{
		ID:        idx.New().String(),
		ClientID:  clientID,
		Subject:   subject,
		Status:    domain.ThreadOpen,
		CreatedBy: actor.UserID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Chat().CreateThread(ctx, t); err != nil {
		return domain.Thread{}, err
	}
	s.publish(domain.ChatEvent{Type: domain.ChatEventThread, ThreadID: t.ID, ClientID: t.ClientID})
	slogx.FromContext(ctx).Info("chat thread opened", slog.String("thread_id", t.ID))
	return t, nil
}

func (s *ChatService) Threads(ctx context.Context, actor Actor, f store.ThreadFilter) ([]domain.Thread, error) {
	f.ClientID = actor.scope(f.ClientID)
	return s.Store.Chat().ListThreads(ctx, f)
}

func (s *ChatService) thread(ctx context.Context, actor Actor, id string) (domain.Thread, error) {
	t, err := s.Store.Chat().GetThread(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Thread{}, ErrThreadNotFound
		}
		return domain.Thread{}, err
	}
	if !actor.sees(t.ClientID) {
		return domain.Thread{}, ErrThreadNotFound
	}
	return t, nil
}

// Messages returns a thread's messages oldest first.
func (s *ChatService) Messages(ctx context.Context, actor Actor, threadID string) ([]domain.Message, error) {
	if _, err := s.thread(ctx, actor, threadID); err != nil {
		return nil, err
	}
	return s.Store.Chat().ListMessages(ctx, threadID)
}

func (s *ChatService) PostMessage(ctx context.Context, actor Actor, threadID, body string) (domain.Message, error) {
	body, err := domain.ValidateMessageBody(body)
	if err != nil {
		return domain.Message{}, err
	}
	t, err := s.thread(ctx, actor, threadID)
	if err != nil {
		return domain.Message{}, err
	}
	if t.Status == domain.ThreadClosed {
		return domain.Message{}, ErrThreadClosed
	}

	m := domain.Message{
		ID:         idx.New().String(),
		ThreadID:   t.ID,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Store.Chat().CreateMessage(ctx, m); err != nil {
		return domain.Message{}, err
	}
	s.publish(domain.ChatEvent{Type: domain.ChatEventMessage, ThreadID: t.ID, ClientID: t.ClientID})
	return m, nil
}

func (s *ChatService) CloseThread(ctx context.Context, actor Actor, threadID string) (domain.Thread, error) {
	t, err := s.thread(ctx, actor, threadID)
	if err != nil {
		return domain.Thread{}, err
	}
	if t.Status == domain.ThreadClosed {
		return domain.Thread{}, ErrThreadClosed
	}
	if err := s.Store.Chat().SetThreadStatus(ctx, t.ID, domain.ThreadClosed); err != nil {
		return domain.Thread{}, err
	}
	t.Status = domain.ThreadClosed
	s.publish(domain.ChatEvent{Type: domain.ChatEventThread, ThreadID: t.ID, ClientID: t.ClientID})
	return t, nil
}

// Subscribe registers a listener for the actor's visible threads.
func (s *ChatService) Subscribe(actor Actor) *Subscription {
	return s.Hub.Subscribe(actor.ClientID)
}

func (s *ChatService) publish(ev domain.ChatEvent) {
	if s.Hub != nil {
		s.Hub.Publish(ev)
	}
}
