package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"chat-capture/backend/internal/hostapp"
	"chat-capture/backend/internal/model"
)

const (
	// PlaceholderTitle is what the host shows until it names a new chat.
	PlaceholderTitle = "New chat"
	// UntitledTitle marks a chat whose title has not been resolved yet.
	UntitledTitle = "untitled"

	forwardTimeout = 30 * time.Second
)

// ChatForwarder delivers chat records to the remote store.
type ChatForwarder interface {
	SaveChat(ctx context.Context, chat model.ChatInfo) error
	SaveChats(ctx context.Context, chats []model.ChatInfo) error
}

// ChatStore persists the known chat list across restarts.
type ChatStore interface {
	LoadChats(ctx context.Context) ([]model.ChatInfo, error)
	SaveChats(ctx context.Context, chats []model.ChatInfo) error
}

// ChatQueue batches chat metadata alongside its messages.
type ChatQueue interface {
	AddChat(chat model.ChatInfo)
}

// MessageSink receives turns reconstructed from conversation payloads.
type MessageSink interface {
	ProcessMessage(ev model.MessageEvent) error
}

// ConversationHandler owns which conversation is active and its title.
type ConversationHandler struct {
	host    hostapp.Reader
	remote  ChatForwarder
	store   ChatStore
	queue   ChatQueue
	sink    MessageSink
	now     func() time.Time
	pending sync.WaitGroup

	mu           sync.RWMutex
	currentID    string
	currentTitle string
	known        *orderedmap.OrderedMap[string, model.ChatInfo]
	// synced is the update time of the last detail payload seen per chat.
	synced map[string]time.Time

	chatListeners *listeners[model.ChatInfo]
}

func NewConversationHandler(host hostapp.Reader, remote ChatForwarder, store ChatStore, queue ChatQueue) *ConversationHandler {
	return &ConversationHandler{
		host:          host,
		remote:        remote,
		store:         store,
		queue:         queue,
		now:           time.Now,
		currentTitle:  UntitledTitle,
		known:         orderedmap.New[string, model.ChatInfo](),
		synced:        make(map[string]time.Time),
		chatListeners: newListeners[model.ChatInfo]("chats"),
	}
}

// SetMessageSink connects the handler that receives reconstructed turns.
// The two handlers depend on each other, so this happens after construction.
func (h *ConversationHandler) SetMessageSink(sink MessageSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = sink
}

// Initialize loads the known chat list from the durable cache.
func (h *ConversationHandler) Initialize(ctx context.Context) error {
	chats, err := h.store.LoadChats(ctx)
	if err != nil {
		return fmt.Errorf("could not load known chats: %w", err)
	}
	h.mu.Lock()
	for _, c := range chats {
		h.known.Set(c.ID, c)
	}
	h.mu.Unlock()
	slog.Info("Loaded known chats", "component", "conversations", "count", len(chats))
	return nil
}

func (h *ConversationHandler) CurrentChatID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentID
}

func (h *ConversationHandler) CurrentChatTitle() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentTitle
}

func (h *ConversationHandler) KnownChats() []model.ChatInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.ChatInfo, 0, h.known.Len())
	for pair := h.known.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// SubscribeChats registers fn for every forwarded chat record.
func (h *ConversationHandler) SubscribeChats(fn func(model.ChatInfo)) (unsubscribe func()) {
	return h.chatListeners.add(fn)
}

// Navigate switches the active conversation. The title resets to
// UntitledTitle and is resolved from domTitle, then from the known list.
// A non-empty chat id triggers a proactive fetch of its detail unless the
// cached copy is already current.
func (h *ConversationHandler) Navigate(ctx context.Context, chatID, domTitle string) {
	chatID = strings.TrimSpace(chatID)

	h.mu.Lock()
	if chatID == h.currentID {
		h.mu.Unlock()
		if domTitle != "" {
			h.ObserveTitle(ctx, domTitle)
		}
		return
	}
	h.currentID = chatID
	h.currentTitle = UntitledTitle
	known, isKnown := h.known.Get(chatID)
	fresh := isKnown && !known.UpdateTime.IsZero() && !h.synced[chatID].Before(known.UpdateTime)
	h.mu.Unlock()

	slog.Info("Active conversation changed", "component", "conversations", "chat_id", chatID)

	switch {
	case domTitle != "":
		h.ObserveTitle(ctx, domTitle)
	case isKnown && usableTitle(known.Title):
		// Already known remotely; no need to forward again.
		h.mu.Lock()
		if h.currentID == chatID {
			h.currentTitle = known.Title
		}
		h.mu.Unlock()
	}

	if chatID == "" || fresh {
		return
	}
	h.background(ctx, func(ctx context.Context) {
		body, err := h.host.FetchConversation(ctx, chatID)
		if err != nil {
			slog.Warn("Could not fetch conversation detail", "component", "conversations", "chat_id", chatID, "error", err)
			return
		}
		if err := h.HandleConversationDetail(ctx, chatID, body); err != nil {
			slog.Warn("Could not process fetched conversation", "component", "conversations", "chat_id", chatID, "error", err)
		}
	})
}

// ObserveTitle handles a title seen in the DOM for the active chat.
func (h *ConversationHandler) ObserveTitle(ctx context.Context, title string) {
	h.discoverTitle(ctx, "", title)
}

// discoverTitle updates the active chat's title and forwards the chat
// record when the title is new and not the host's placeholder. A non-empty
// chatID limits the update to that chat being active.
func (h *ConversationHandler) discoverTitle(ctx context.Context, chatID, title string) {
	title = strings.TrimSpace(title)
	if !usableTitle(title) {
		return
	}

	h.mu.Lock()
	if h.currentID == "" || (chatID != "" && chatID != h.currentID) || title == h.currentTitle {
		h.mu.Unlock()
		return
	}
	h.currentTitle = title
	chat, ok := h.known.Get(h.currentID)
	if !ok {
		chat = model.ChatInfo{ID: h.currentID, CreateTime: h.now().UTC()}
	}
	chat.Title = title
	if chat.UpdateTime.IsZero() {
		chat.UpdateTime = h.now().UTC()
	}
	h.known.Set(chat.ID, chat)
	h.mu.Unlock()

	slog.Info("Chat title discovered", "component", "conversations", "chat_id", chat.ID, "title", title)
	h.chatListeners.notify(chat)
	h.background(ctx, func(ctx context.Context) {
		if err := h.remote.SaveChat(ctx, chat); err != nil {
			slog.Warn("Could not forward chat record", "component", "conversations", "chat_id", chat.ID, "error", err)
		}
	})
}

// HandleConversationDetail processes a conversation detail payload:
// metadata is queued, the title is considered, and every visible turn is
// handed to the message sink in conversation order. fallbackID is used
// when the payload carries no id.
func (h *ConversationHandler) HandleConversationDetail(ctx context.Context, fallbackID string, body []byte) error {
	conv, err := hostapp.ParseConversation(body)
	if err != nil {
		return err
	}
	if conv.ID == "" {
		conv.ID = fallbackID
	}
	if conv.ID == "" {
		return fmt.Errorf("%w: conversation without id", hostapp.ErrUnrecognized)
	}

	h.mu.Lock()
	if h.currentID == "" {
		h.currentID = conv.ID
	}
	h.synced[conv.ID] = conv.UpdateTime
	info := conv.ChatInfo()
	if prev, ok := h.known.Get(conv.ID); ok && !usableTitle(info.Title) {
		info.Title = prev.Title
	}
	h.known.Set(conv.ID, info)
	sink := h.sink
	h.mu.Unlock()

	if h.queue != nil {
		h.queue.AddChat(info)
	}
	h.discoverTitle(ctx, conv.ID, conv.Title)

	if sink == nil {
		return nil
	}
	var dropped int
	for _, m := range conv.Messages {
		ts := m.CreateTime
		if ts.IsZero() {
			ts = h.now().UTC()
		}
		err := sink.ProcessMessage(model.MessageEvent{
			Type:           m.Role,
			MessageID:      m.ID,
			Content:        m.Content,
			Timestamp:      ts,
			ConversationID: conv.ID,
			Model:          m.Model,
			ThinkingTime:   m.ThinkingTime,
		})
		if err != nil {
			dropped++
		}
	}
	slog.Debug("Processed conversation detail", "component", "conversations", "chat_id", conv.ID, "messages", len(conv.Messages), "dropped", dropped)
	return nil
}

// HandleConversationList merges one page of the conversation list into the
// known chats, rewrites the durable cache, and forwards the page in a
// single batched call.
func (h *ConversationHandler) HandleConversationList(ctx context.Context, body []byte) error {
	chats, err := hostapp.ParseConversationList(body)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		return nil
	}

	h.mu.Lock()
	for _, c := range chats {
		h.known.Set(c.ID, c)
	}
	h.mu.Unlock()

	if err := h.store.SaveChats(ctx, h.KnownChats()); err != nil {
		slog.Warn("Could not persist known chats", "component", "conversations", "error", err)
	}

	h.background(ctx, func(ctx context.Context) {
		if err := h.remote.SaveChats(ctx, chats); err != nil {
			slog.Warn("Could not forward chat list", "component", "conversations", "count", len(chats), "error", err)
		}
	})
	return nil
}

// background runs fn detached from the caller's cancellation.
func (h *ConversationHandler) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), forwardTimeout)
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until background fetches and forwards have finished.
func (h *ConversationHandler) Wait() {
	h.pending.Wait()
}

func usableTitle(title string) bool {
	return title != "" && title != PlaceholderTitle && title != UntitledTitle
}

// IsUnrecognized reports whether err means a host payload had an
// unexpected shape.
func IsUnrecognized(err error) bool {
	return errors.Is(err, hostapp.ErrUnrecognized)
}
