// Package remote wraps the remote store's endpoints. Every call goes
// through the request gateway.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"chat-capture/backend/internal/gateway"
	"chat-capture/backend/internal/model"
)

// Requester is the part of the gateway the client needs.
type Requester interface {
	Request(ctx context.Context, endpoint string, opts gateway.RequestOptions) (json.RawMessage, error)
}

type Client struct {
	gw Requester
}

func NewClient(gw Requester) *Client {
	return &Client{gw: gw}
}

func (c *Client) post(ctx context.Context, endpoint string, body any) error {
	_, err := c.gw.Request(ctx, endpoint, gateway.RequestOptions{Method: http.MethodPost, Body: body})
	return err
}

func (c *Client) SaveMessage(ctx context.Context, rec model.MessageRecord) error {
	return c.post(ctx, "/save/message", rec)
}

func (c *Client) SaveMessages(ctx context.Context, recs []model.MessageRecord) error {
	return c.post(ctx, "/save/batch/message", map[string]any{"messages": recs})
}

func (c *Client) SaveChat(ctx context.Context, chat model.ChatInfo) error {
	return c.post(ctx, "/save/chat", chat)
}

func (c *Client) SaveChats(ctx context.Context, chats []model.ChatInfo) error {
	return c.post(ctx, "/save/batch/chat", map[string]any{"chats": chats})
}

// SaveBatch delivers chats and messages in one call. The remote store
// accepts or rejects the batch as a whole.
func (c *Client) SaveBatch(ctx context.Context, batch model.Batch) error {
	return c.post(ctx, "/save/batch", batch)
}

func (c *Client) SaveUserMetadata(ctx context.Context, md model.UserMetadata) error {
	return c.post(ctx, "/save/user_metadata", md)
}

func (c *Client) GetUserStats(ctx context.Context) (*model.UserStats, error) {
	payload, err := c.gw.Request(ctx, "/stats/user", gateway.RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	var stats model.UserStats
	if payload == nil {
		return &stats, nil
	}
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("could not decode user stats: %w", err)
	}
	return &stats, nil
}

func (c *Client) TrackTemplateUsage(ctx context.Context, templateID string) error {
	return c.post(ctx, "/prompt-templates/use-template/"+url.PathEscape(templateID), nil)
}

// ListNotifications accepts either a bare array or {"notifications": [...]}.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	payload, err := c.gw.Request(ctx, "/notifications", gateway.RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []model.Notification{}, nil
	}

	list := gjson.ParseBytes(payload)
	if !list.IsArray() {
		list = list.Get("notifications")
	}
	out := []model.Notification{}
	if !list.IsArray() {
		return out, nil
	}
	if err := json.Unmarshal([]byte(list.Raw), &out); err != nil {
		return nil, fmt.Errorf("could not decode notifications: %w", err)
	}
	return out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.post(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil)
}
