package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-capture/backend/internal/auth/mocks"
	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/gateway"
)

// fastReads keeps retry tests quick while preserving the linear schedule.
func fastReads() gateway.Option {
	return gateway.WithReadPolicy(gateway.RetryPolicy{MaxRetries: 2, Delay: time.Millisecond, Schedule: gateway.Linear})
}

// failingTransport fails every request at the network level.
type failingTransport struct {
	calls atomic.Int32
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, errors.New("connection reset by peer")
}

func TestGateway_Request_AttachesTokenAndDecodes(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_chats": 3}`))
	}))
	defer server.Close()

	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("tok-1", nil).Once()

	gw := gateway.New(server.URL, tokens)
	payload, err := gw.Request(context.Background(), "/stats/user", gateway.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.JSONEq(t, `{"total_chats": 3}`, string(payload))
}

func TestGateway_Request_CollapsesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(entered)
		}
		<-release
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("tok", nil)

	gw := gateway.New(server.URL, tokens)
	opts := gateway.RequestOptions{Method: http.MethodPost, Body: map[string]string{"id": "c1"}}

	var wg sync.WaitGroup
	results := make([]json.RawMessage, 2)
	errs := make([]error, 2)
	call := func(i int) {
		defer wg.Done()
		results[i], errs[i] = gw.Request(context.Background(), "/save/chat", opts)
	}

	wg.Add(2)
	go call(0)
	<-entered
	go call(1)
	// Give the second caller time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, results[0], results[1])
}

func TestGateway_Request_InFlightEntryClearedAfterSettle(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("tok", nil)
	gw := gateway.New(server.URL, tokens)

	opts := gateway.RequestOptions{Method: http.MethodPost, Body: "x"}
	_, err1 := gw.Request(context.Background(), "/save/chat", opts)
	_, err2 := gw.Request(context.Background(), "/save/chat", opts)

	assert.Error(t, err1)
	assert.Error(t, err2)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGateway_Request_AuthFailure(t *testing.T) {
	t.Run("Terminal after one refresh", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "token expired"}`))
		}))
		defer server.Close()

		tokens := mocks.NewMockTokenProvider(t)
		tokens.On("GetAuthToken", mock.Anything).Return("old", nil).Once()
		tokens.On("RefreshAuthToken", mock.Anything).Return("new", nil).Once()

		gw := gateway.New(server.URL, tokens)
		_, err := gw.Request(context.Background(), "/save/batch", gateway.RequestOptions{Method: http.MethodPost})

		require.Error(t, err)
		assert.ErrorIs(t, err, app_errors.ErrAuthentication)
		var apiErr *gateway.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "token expired", apiErr.Message)
		assert.Equal(t, int32(2), hits.Load())
		tokens.AssertNumberOfCalls(t, "RefreshAuthToken", 1)
	})

	t.Run("Recovers with refreshed token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer new" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(`{"saved": 1}`))
		}))
		defer server.Close()

		tokens := mocks.NewMockTokenProvider(t)
		tokens.On("GetAuthToken", mock.Anything).Return("old", nil).Once()
		tokens.On("RefreshAuthToken", mock.Anything).Return("new", nil).Once()

		gw := gateway.New(server.URL, tokens)
		payload, err := gw.Request(context.Background(), "/save/chat", gateway.RequestOptions{Method: http.MethodPost})
		require.NoError(t, err)
		assert.JSONEq(t, `{"saved": 1}`, string(payload))
	})

	t.Run("Refresh failure is terminal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tokens := mocks.NewMockTokenProvider(t)
		tokens.On("GetAuthToken", mock.Anything).Return("old", nil).Once()
		tokens.On("RefreshAuthToken", mock.Anything).Return("", errors.New("session gone")).Once()

		gw := gateway.New(server.URL, tokens)
		_, err := gw.Request(context.Background(), "/save/chat", gateway.RequestOptions{Method: http.MethodPost})
		assert.ErrorIs(t, err, app_errors.ErrAuthentication)
	})
}

func TestGateway_Request_AnonymousAllowed(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("", errors.New("signed out"))

	gw := gateway.New(server.URL, tokens)

	_, err := gw.Request(context.Background(), "/notifications", gateway.RequestOptions{AllowAnonymous: true})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	_, err = gw.Request(context.Background(), "/stats/user", gateway.RequestOptions{})
	assert.ErrorIs(t, err, app_errors.ErrAuthentication)
}

func TestGateway_Request_TransientFailures(t *testing.T) {
	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("tok", nil)

	t.Run("Idempotent calls retry twice", func(t *testing.T) {
		transport := &failingTransport{}
		gw := gateway.New("http://remote.invalid", tokens, fastReads(), gateway.WithHTTPClient(&http.Client{Transport: transport}))

		_, err := gw.Request(context.Background(), "/stats/user", gateway.RequestOptions{})
		require.Error(t, err)
		assert.Equal(t, int32(3), transport.calls.Load())
	})

	t.Run("Explicit GET is idempotent", func(t *testing.T) {
		transport := &failingTransport{}
		gw := gateway.New("http://remote.invalid", tokens, fastReads(), gateway.WithHTTPClient(&http.Client{Transport: transport}))

		_, err := gw.Request(context.Background(), "/notifications", gateway.RequestOptions{Method: http.MethodGet})
		require.Error(t, err)
		assert.Equal(t, int32(3), transport.calls.Load())
	})

	t.Run("Writes are not retried", func(t *testing.T) {
		transport := &failingTransport{}
		gw := gateway.New("http://remote.invalid", tokens, fastReads(), gateway.WithHTTPClient(&http.Client{Transport: transport}))

		_, err := gw.Request(context.Background(), "/save/batch", gateway.RequestOptions{Method: http.MethodPost})
		require.Error(t, err)
		assert.Equal(t, int32(1), transport.calls.Load())
	})

	t.Run("HTTP error statuses are not retried", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		gw := gateway.New(server.URL, tokens, fastReads())
		_, err := gw.Request(context.Background(), "/stats/user", gateway.RequestOptions{})
		require.Error(t, err)
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestGateway_Request_ResponseHandling(t *testing.T) {
	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("tok", nil)

	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
		wantNil bool
	}{
		{name: "Detail message", status: http.StatusUnprocessableEntity, body: `{"detail": "chat id required"}`, wantErr: "chat id required"},
		{name: "Raw text", status: http.StatusInternalServerError, body: "upstream exploded", wantErr: "upstream exploded"},
		{name: "Non-JSON success", status: http.StatusOK, body: "OK", wantNil: true},
		{name: "Empty success", status: http.StatusNoContent, body: "", wantNil: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			gw := gateway.New(server.URL, tokens)
			payload, err := gw.Request(context.Background(), "/save/message", gateway.RequestOptions{Method: http.MethodPost, Body: tc.name})
			if tc.wantErr != "" {
				var apiErr *gateway.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tc.status, apiErr.Status)
				assert.Equal(t, tc.wantErr, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, payload)
		})
	}
}

func TestGateway_Request_WaiterCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()
	defer close(release)

	tokens := mocks.NewMockTokenProvider(t)
	tokens.On("GetAuthToken", mock.Anything).Return("tok", nil)
	gw := gateway.New(server.URL, tokens)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := gw.Request(ctx, "/stats/user", gateway.RequestOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
