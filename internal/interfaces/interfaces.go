package interfaces

import (
	"context"

	"chat-capture/backend/internal/batch"
	"chat-capture/backend/internal/model"
	"chat-capture/backend/internal/service"
)

// The control API depends on these instead of the concrete handlers so it
// can be tested against mocks.

// ConversationService tracks the active conversation and its title.
type ConversationService interface {
	Navigate(ctx context.Context, chatID, domTitle string)
	ObserveTitle(ctx context.Context, title string)
	CurrentChatID() string
	CurrentChatTitle() string
	KnownChats() []model.ChatInfo
	SubscribeChats(fn func(model.ChatInfo)) (unsubscribe func())
}

// MessageService deduplicates observed turns and queues them for delivery.
type MessageService interface {
	ProcessMessage(ev model.MessageEvent) error
	Subscribe(fn func(model.MessageEvent)) (unsubscribe func())
	Stats() service.MessageStats
}

// BatchService exposes the delivery queue.
type BatchService interface {
	ForceFlush(ctx context.Context) error
	Stats() batch.Stats
}

// AccountService covers user-level data kept by the remote store.
type AccountService interface {
	Stats(ctx context.Context) (*model.UserStats, error)
	SyncUserMetadata(ctx context.Context, md model.UserMetadata) error
	Notifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	TrackTemplateUsage(ctx context.Context, templateID string) error
}
