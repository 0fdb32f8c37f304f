package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

// keepAliveInterval is how often an idle event stream sends a comment line.
const keepAliveInterval = 25 * time.Second

type ChatHandler struct {
	ChatService *service.ChatService
}

type CreateThreadRequest struct {
	ClientID string `json:"client_id"`
	Subject  string `json:"subject"`
}

type PostMessageRequest struct {
	Body string `json:"body"`
}

// HandleListThreads handles GET /v1/chat/threads
//
//	@Summary	List chat threads
//	@Tags		Chat
//	@Security	BearerAuth
//	@Produce	json
//	@Param		client_id	query		string	false	"Client ID"
//	@Param		status		query		string	false	"open or closed"
//	@Success	200			{object}	listResponse[domain.Thread]
//	@Router		/v1/chat/threads [get].
func (h *ChatHandler) HandleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.ChatService.Threads(r.Context(), actorFrom(r), store.ThreadFilter{
		ClientID: query(r, "client_id"),
		Status:   domain.ThreadStatus(query(r, "status")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(threads))
}

// HandleCreateThread handles POST /v1/chat/threads
//
//	@Summary	Open a chat thread
//	@Tags		Chat
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateThreadRequest	true	"Thread"
//	@Success	201		{object}	domain.Thread
//	@Router		/v1/chat/threads [post].
func (h *ChatHandler) HandleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	t, err := h.ChatService.CreateThread(r.Context(), actorFrom(r), req.ClientID, req.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

// HandleMessages handles GET /v1/chat/threads/{id}/messages
//
//	@Summary	Messages of a thread, oldest first
//	@Tags		Chat
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Thread ID"
//	@Success	200	{object}	listResponse[domain.Message]
//	@Router		/v1/chat/threads/{id}/messages [get].
func (h *ChatHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.ChatService.Messages(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newList(msgs))
}

// HandlePostMessage handles POST /v1/chat/threads/{id}/messages
//
//	@Summary	Post a message
//	@Tags		Chat
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Thread ID"
//	@Param		request	body		PostMessageRequest	true	"Message"
//	@Success	201		{object}	domain.Message
//	@Failure	409		{object}	httpx.ErrorResponse	"thread closed"
//	@Router		/v1/chat/threads/{id}/messages [post].
func (h *ChatHandler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	m, err := h.ChatService.PostMessage(r.Context(), actorFrom(r), r.PathValue("id"), req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

// HandleCloseThread handles POST /v1/chat/threads/{id}/close
//
//	@Summary	Close a thread
//	@Tags		Chat
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Thread ID"
//	@Success	200	{object}	domain.Thread
//	@Router		/v1/chat/threads/{id}/close [post].
func (h *ChatHandler) HandleCloseThread(w http.ResponseWriter, r *http.Request) {
	t, err := h.ChatService.CloseThread(r.Context(), actorFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

// HandleEvents handles GET /v1/chat/events
//
// Each notification is sent as an SSE event named after its type. Nothing is
// replayed on reconnect; subscribers refetch instead.
//
//	@Summary	Chat notification stream
//	@Tags		Chat
//	@Security	BearerAuth
//	@Produce	text/event-stream
//	@Success	200	{object}	domain.ChatEvent
//	@Router		/v1/chat/events [get].
func (h *ChatHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	sub := h.ChatService.Subscribe(actorFrom(r))
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Comment line so clients see the stream is live.
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		slogx.FromContext(r.Context()).Warn("event stream not flushable", "error", err)
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
