package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-capture/backend/internal/auth"
	"chat-capture/backend/internal/gateway"
	"chat-capture/backend/internal/model"
	"chat-capture/backend/internal/remote"
)

type capturedRequest struct {
	method string
	path   string
	body   string
}

func setupClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*remote.Client, *capturedRequest) {
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		captured.method, captured.path, captured.body = r.Method, r.URL.Path, string(b)
		if respond != nil {
			respond(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	t.Cleanup(server.Close)

	gw := gateway.New(server.URL+"/api", auth.StaticTokenProvider{Token: "secret"})
	return remote.NewClient(gw), captured
}

func TestClient_Writes(t *testing.T) {
	ctx := context.Background()
	chat := model.ChatInfo{ID: "c1", Title: "Trip", CreateTime: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), UpdateTime: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	rec := model.MessageRecord{MessageID: "m1", Content: "Hi", Role: model.RoleUser, Rank: 0, ConversationID: "c1"}

	testCases := []struct {
		name         string
		call         func(c *remote.Client) error
		expectedPath string
		expectedBody string
	}{
		{
			name:         "SaveMessage",
			call:         func(c *remote.Client) error { return c.SaveMessage(ctx, rec) },
			expectedPath: "/api/save/message",
			expectedBody: `{"message_id":"m1","content":"Hi","role":"user","rank":0,"conversation_id":"c1"}`,
		},
		{
			name:         "SaveMessages",
			call:         func(c *remote.Client) error { return c.SaveMessages(ctx, []model.MessageRecord{rec}) },
			expectedPath: "/api/save/batch/message",
			expectedBody: `{"messages":[{"message_id":"m1","content":"Hi","role":"user","rank":0,"conversation_id":"c1"}]}`,
		},
		{
			name:         "SaveChat",
			call:         func(c *remote.Client) error { return c.SaveChat(ctx, chat) },
			expectedPath: "/api/save/chat",
			expectedBody: `{"id":"c1","title":"Trip","create_time":"2024-05-01T00:00:00Z","update_time":"2024-05-01T00:00:00Z"}`,
		},
		{
			name:         "SaveChats",
			call:         func(c *remote.Client) error { return c.SaveChats(ctx, []model.ChatInfo{chat}) },
			expectedPath: "/api/save/batch/chat",
			expectedBody: `{"chats":[{"id":"c1","title":"Trip","create_time":"2024-05-01T00:00:00Z","update_time":"2024-05-01T00:00:00Z"}]}`,
		},
		{
			name: "SaveBatch",
			call: func(c *remote.Client) error {
				return c.SaveBatch(ctx, model.Batch{Chats: []model.ChatInfo{}, Messages: []model.MessageRecord{rec}})
			},
			expectedPath: "/api/save/batch",
			expectedBody: `{"chats":[],"messages":[{"message_id":"m1","content":"Hi","role":"user","rank":0,"conversation_id":"c1"}]}`,
		},
		{
			name:         "SaveUserMetadata",
			call:         func(c *remote.Client) error { return c.SaveUserMetadata(ctx, model.UserMetadata{Name: "Ada", Plan: "plus"}) },
			expectedPath: "/api/save/user_metadata",
			expectedBody: `{"name":"Ada","plan":"plus"}`,
		},
		{
			name:         "TrackTemplateUsage",
			call:         func(c *remote.Client) error { return c.TrackTemplateUsage(ctx, "tpl 1") },
			expectedPath: "/api/prompt-templates/use-template/tpl 1",
		},
		{
			name:         "MarkNotificationRead",
			call:         func(c *remote.Client) error { return c.MarkNotificationRead(ctx, "n1") },
			expectedPath: "/api/notifications/n1/read",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// ARRANGE
			client, captured := setupClient(t, nil)

			// ACT
			err := tc.call(client)

			// ASSERT
			require.NoError(t, err)
			assert.Equal(t, http.MethodPost, captured.method)
			assert.Equal(t, tc.expectedPath, captured.path)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, captured.body)
			} else {
				assert.Empty(t, captured.body)
			}
		})
	}
}

func TestClient_GetUserStats(t *testing.T) {
	client, captured := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_chats": 12, "total_messages": 240}`))
	})

	stats, err := client.GetUserStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, captured.method)
	assert.Equal(t, "/api/stats/user", captured.path)
	assert.Equal(t, &model.UserStats{TotalChats: 12, TotalMessages: 240}, stats)
}

func TestClient_ListNotifications(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		expected int
	}{
		{name: "Bare array", response: `[{"id": "n1", "title": "Hello", "read": false}]`, expected: 1},
		{name: "Wrapped array", response: `{"notifications": [{"id": "n1"}, {"id": "n2", "read": true}]}`, expected: 2},
		{name: "Unknown shape", response: `{"items": []}`, expected: 0},
		{name: "Empty body", response: ``, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, captured := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.response))
			})

			list, err := client.ListNotifications(context.Background())

			require.NoError(t, err)
			assert.Equal(t, "/api/notifications", captured.path)
			assert.Len(t, list, tc.expected)
		})
	}
}

func TestClient_ErrorsPropagate(t *testing.T) {
	client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "bad batch"}`))
	})

	err := client.SaveBatch(context.Background(), model.Batch{})

	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad batch", apiErr.Message)
}
