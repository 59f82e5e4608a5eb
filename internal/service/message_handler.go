package service

import (
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/model"
)

const DefaultDedupCapacity = 100_000

// ChatResolver supplies the active conversation for events that carry none.
type ChatResolver interface {
	CurrentChatID() string
}

// MessageQueue accepts delivery records for batching.
type MessageQueue interface {
	AddMessage(rec model.MessageRecord)
}

type MessageStats struct {
	Accepted   int64 `json:"accepted"`
	Duplicates int64 `json:"duplicates"`
	Dropped    int64 `json:"dropped"`
}

// MessageHandler is the deduplication boundary for observed turns.
type MessageHandler struct {
	chats ChatResolver
	queue MessageQueue

	mu    sync.Mutex
	seen  *lru.Cache[string, struct{}]
	ranks *lru.Cache[string, int]
	stats MessageStats

	listeners *listeners[model.MessageEvent]
}

// NewMessageHandler creates a handler whose ledger remembers up to capacity
// message ids. The oldest ids are forgotten first.
func NewMessageHandler(chats ChatResolver, queue MessageQueue, capacity int) (*MessageHandler, error) {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	seen, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("could not create dedup ledger: %w", err)
	}
	ranks, err := lru.New[string, int](capacity)
	if err != nil {
		return nil, fmt.Errorf("could not create rank table: %w", err)
	}
	return &MessageHandler{
		chats:     chats,
		queue:     queue,
		seen:      seen,
		ranks:     ranks,
		listeners: newListeners[model.MessageEvent]("messages"),
	}, nil
}

// ProcessMessage accepts an observed turn. A message id seen before is a
// no-op. An event that cannot be tied to a conversation is dropped and
// ErrUnattributed is returned.
func (h *MessageHandler) ProcessMessage(ev model.MessageEvent) error {
	if ev.MessageID == "" {
		return fmt.Errorf("%w: message id is required", app_errors.ErrValidation)
	}

	h.mu.Lock()
	if h.seen.Contains(ev.MessageID) {
		h.stats.Duplicates++
		h.mu.Unlock()
		return nil
	}

	convID := ev.ConversationID
	if convID == "" && h.chats != nil {
		convID = h.chats.CurrentChatID()
	}
	if convID == "" {
		h.stats.Dropped++
		h.mu.Unlock()
		slog.Warn("Dropping message without a conversation", "component", "messages", "message_id", ev.MessageID, "role", ev.Type)
		return app_errors.ErrUnattributed
	}

	h.seen.Add(ev.MessageID, struct{}{})
	rank, _ := h.ranks.Get(convID)
	h.ranks.Add(convID, rank+1)
	h.stats.Accepted++
	h.mu.Unlock()

	h.queue.AddMessage(model.MessageRecord{
		MessageID:      ev.MessageID,
		Content:        ev.Content,
		Role:           ev.Type,
		Rank:           rank,
		ConversationID: convID,
		Model:          ev.Model,
		ThinkingTime:   ev.ThinkingTime,
	})

	h.listeners.notify(ev)
	return nil
}

// Subscribe registers fn for every newly accepted event. Calls happen on
// another goroutine.
func (h *MessageHandler) Subscribe(fn func(model.MessageEvent)) (unsubscribe func()) {
	return h.listeners.add(fn)
}

func (h *MessageHandler) Stats() MessageStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}
