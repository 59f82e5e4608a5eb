package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/interfaces"
	"chat-capture/backend/internal/model"
)

// eventBuffer bounds how far a slow event-stream client may fall behind
// before events are dropped for it.
const eventBuffer = 64

// CaptureHandler serves the commands the page script sends and the
// pipeline's read-only views.
type CaptureHandler struct {
	conversations interfaces.ConversationService
	messages      interfaces.MessageService
	batches       interfaces.BatchService
	now           func() time.Time
}

func NewCaptureHandler(conversations interfaces.ConversationService, messages interfaces.MessageService, batches interfaces.BatchService) *CaptureHandler {
	return &CaptureHandler{
		conversations: conversations,
		messages:      messages,
		batches:       batches,
		now:           time.Now,
	}
}

// HandleNavigation godoc
// @Summary      Report navigation
// @Description  Switches the active conversation. An empty chat id means no conversation is open.
// @Tags         DOM
// @Accept       json
// @Produce      json
// @Param        request  body      NavigationRequest  true  "New location"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /dom/navigation [post]
func (h *CaptureHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	var req NavigationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	h.conversations.Navigate(r.Context(), req.ChatID, req.Title)
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleTitle godoc
// @Summary      Report the visible chat title
// @Tags         DOM
// @Accept       json
// @Produce      json
// @Param        request  body      TitleRequest  true  "Title"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /dom/title [post]
func (h *CaptureHandler) HandleTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	h.conversations.ObserveTitle(r.Context(), req.Title)
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleMessages godoc
// @Summary      Submit scraped turns
// @Description  Turns without a conversation id are attributed to the active chat, or dropped when there is none.
// @Tags         DOM
// @Accept       json
// @Produce      json
// @Param        request  body      MessagesRequest  true  "Turns"
// @Success      200      {object}  MessagesResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /dom/messages [post]
func (h *CaptureHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	var resp MessagesResponse
	for _, m := range req.Messages {
		ts := h.now().UTC()
		if m.Timestamp != nil {
			ts = m.Timestamp.UTC()
		}
		err := h.messages.ProcessMessage(model.MessageEvent{
			Type:           m.Type,
			MessageID:      m.MessageID,
			Content:        m.Content,
			Timestamp:      ts,
			ConversationID: m.ConversationID,
			Model:          m.Model,
			ThinkingTime:   m.ThinkingTime,
		})
		switch {
		case err == nil:
			resp.Accepted++
		case errors.Is(err, app_errors.ErrUnattributed):
			resp.Dropped++
		default:
			respondWithError(w, err)
			return
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// GetStatus godoc
// @Summary      Pipeline status
// @Tags         Capture
// @Produce      json
// @Success      200  {object}  CaptureStatus
// @Router       /status [get]
func (h *CaptureHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, CaptureStatus{
		ChatID:     h.conversations.CurrentChatID(),
		Title:      h.conversations.CurrentChatTitle(),
		KnownChats: len(h.conversations.KnownChats()),
		Messages:   h.messages.Stats(),
		Batch:      h.batches.Stats(),
	})
}

// GetChats godoc
// @Summary      Known chats
// @Tags         Capture
// @Produce      json
// @Success      200  {array}  model.ChatInfo
// @Router       /chats [get]
func (h *CaptureHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	chats := h.conversations.KnownChats()
	if chats == nil {
		chats = []model.ChatInfo{}
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// HandleFlush godoc
// @Summary      Deliver pending items now
// @Tags         Capture
// @Produce      json
// @Success      200  {object}  batch.Stats
// @Failure      500  {object}  ErrorResponse
// @Router       /flush [post]
func (h *CaptureHandler) HandleFlush(w http.ResponseWriter, r *http.Request) {
	if err := h.batches.ForceFlush(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.batches.Stats())
}

// HandleEvents godoc
// @Summary      Live capture events
// @Description  Streams every newly accepted message and forwarded chat record.
// @Tags         Capture
// @Produce      text/event-stream
// @Success      200  {object}  Event  "Stream of events"
// @Router       /events [get]
func (h *CaptureHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan Event, eventBuffer)
	push := func(ev Event) {
		select {
		case events <- ev:
		default:
			slog.Warn("Event stream client is too slow, dropping event", "component", "api", "type", ev.Type)
		}
	}

	unsubscribeMessages := h.messages.Subscribe(func(m model.MessageEvent) {
		push(Event{Type: "message", Message: &m})
	})
	defer unsubscribeMessages()
	unsubscribeChats := h.conversations.SubscribeChats(func(c model.ChatInfo) {
		push(Event{Type: "chat", Chat: &c})
	})
	defer unsubscribeChats()

	w.WriteHeader(http.StatusOK)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			slog.Info("Event stream client disconnected", "component", "api")
			return
		case ev := <-events:
			if err := writeStreamEvent(w, ev); err != nil {
				slog.Warn("Could not write to event stream, client likely disconnected", "component", "api", "error", err)
				return
			}
		}
	}
}
