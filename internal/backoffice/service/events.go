package service

import (
	"sync"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
)

// EventBuffer is the number of notifications a subscriber may fall behind
// before new ones are dropped for it.
const EventBuffer = 16

// Subscription receives chat notifications until it is cancelled.
type Subscription struct {
	C <-chan domain.ChatEvent

	hub      *Hub
	ch       chan domain.ChatEvent
	clientID string
}

// Cancel unregisters the subscription and closes C. Safe to call twice.
func (s *Subscription) Cancel() {
	s.hub.unsubscribe(s)
}

// Hub fans chat notifications out to live subscribers. Publishing never
// blocks: a full subscriber misses the event and refetches on the next one.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a listener. A non-empty clientID restricts delivery to
// events about that client's threads.
func (h *Hub) Subscribe(clientID string) *Subscription {
	ch := make(chan domain.ChatEvent, EventBuffer)
	s := &Subscription{C: ch, hub: h, ch: ch, clientID: clientID}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

// Publish delivers ev to every matching subscriber and returns how many
// received it.
func (h *Hub) Publish(ev domain.ChatEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.subs {
		if s.clientID != "" && s.clientID != ev.ClientID {
			continue
		}
		select {
		case s.ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
