package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-capture/backend/internal/auth"
	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/gateway"
	"chat-capture/backend/internal/model"
	"chat-capture/backend/internal/remote"
	"chat-capture/backend/internal/service"
	"chat-capture/backend/internal/service/mocks"
)

func fastPolicy() gateway.RetryPolicy {
	return gateway.RetryPolicy{MaxRetries: 2, Delay: time.Millisecond, Schedule: gateway.Linear}
}

func TestAccountService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("Cached until max age", func(t *testing.T) {
		// ARRANGE
		remote := mocks.NewMockAccountRemote(t)
		clk := clock.NewMock()
		svc := service.NewAccountService(remote, fastPolicy(), time.Minute, clk)
		remote.On("GetUserStats", mock.Anything).Return(&model.UserStats{TotalChats: 3, TotalMessages: 40}, nil).Once()

		// ACT
		first, err := svc.Stats(ctx)
		require.NoError(t, err)
		second, err := svc.Stats(ctx)
		require.NoError(t, err)

		// ASSERT
		assert.Equal(t, 3, first.TotalChats)
		assert.Equal(t, first, second)

		// ARRANGE
		remote.On("GetUserStats", mock.Anything).Return(&model.UserStats{TotalChats: 4, TotalMessages: 42}, nil).Once()
		clk.Add(2 * time.Minute)

		// ACT
		third, err := svc.Stats(ctx)

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, 4, third.TotalChats)
	})

	t.Run("Transient failures are retried", func(t *testing.T) {
		remote := mocks.NewMockAccountRemote(t)
		svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
		remote.On("GetUserStats", mock.Anything).Return(nil, &gateway.APIError{Status: http.StatusBadGateway, Message: "upstream"}).Once()
		remote.On("GetUserStats", mock.Anything).Return(nil, &gateway.APIError{Status: http.StatusTooManyRequests, Message: "slow down"}).Once()
		remote.On("GetUserStats", mock.Anything).Return(&model.UserStats{TotalChats: 1}, nil).Once()

		stats, err := svc.RefreshStats(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalChats)
	})

	t.Run("Auth failures are not retried", func(t *testing.T) {
		remote := mocks.NewMockAccountRemote(t)
		svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
		remote.On("GetUserStats", mock.Anything).Return(nil, app_errors.ErrAuthentication).Once()

		_, err := svc.RefreshStats(ctx)

		assert.ErrorIs(t, err, app_errors.ErrAuthentication)
	})

	t.Run("Client errors are not retried", func(t *testing.T) {
		remote := mocks.NewMockAccountRemote(t)
		svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
		remote.On("GetUserStats", mock.Anything).Return(nil, &gateway.APIError{Status: http.StatusNotFound, Message: "no user"}).Once()

		_, err := svc.RefreshStats(ctx)

		var apiErr *gateway.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})

	t.Run("Network failures are left to the gateway", func(t *testing.T) {
		remote := mocks.NewMockAccountRemote(t)
		svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
		remote.On("GetUserStats", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		_, err := svc.RefreshStats(ctx)

		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("Retries are exhausted", func(t *testing.T) {
		remote := mocks.NewMockAccountRemote(t)
		svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
		remote.On("GetUserStats", mock.Anything).Return(nil, &gateway.APIError{Status: http.StatusServiceUnavailable, Message: "maintenance"}).Times(3)

		_, err := svc.RefreshStats(ctx)

		assert.ErrorContains(t, err, "maintenance")
	})
}

func TestAccountService_RefreshStatsNetworkAttempts(t *testing.T) {
	// ARRANGE: every connection is dropped before a response is written.
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer server.Close()

	gw := gateway.New(server.URL, auth.StaticTokenProvider{Token: "secret"},
		gateway.WithReadPolicy(gateway.RetryPolicy{MaxRetries: 2, Delay: time.Millisecond, Schedule: gateway.Linear}),
	)
	statsPolicy := gateway.RetryPolicy{MaxRetries: 3, Delay: time.Millisecond, Schedule: gateway.Exponential}
	svc := service.NewAccountService(remote.NewClient(gw), statsPolicy, time.Minute, nil)

	// ACT
	_, err := svc.RefreshStats(context.Background())

	// ASSERT: only the gateway's read policy retries network failures.
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestAccountService_RunStatsRefresher(t *testing.T) {
	// ARRANGE
	remote := mocks.NewMockAccountRemote(t)
	clk := clock.NewMock()
	svc := service.NewAccountService(remote, fastPolicy(), time.Hour, clk)
	refreshed := make(chan struct{}, 1)
	remote.On("GetUserStats", mock.Anything).Run(func(mock.Arguments) {
		select {
		case refreshed <- struct{}{}:
		default:
		}
	}).Return(&model.UserStats{TotalChats: 9}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunStatsRefresher(ctx, time.Minute)
	}()

	// ACT: advance until the ticker goroutine has registered and fired.
	require.Eventually(t, func() bool {
		clk.Add(time.Minute)
		select {
		case <-refreshed:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	// ASSERT: the refreshed value is served from cache.
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.TotalChats)
}

func TestAccountService_SyncUserMetadata(t *testing.T) {
	// ARRANGE
	remote := mocks.NewMockAccountRemote(t)
	svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
	ctx := context.Background()
	md := model.UserMetadata{Name: "Ada", Email: "ada@example.com", Plan: "plus"}

	remote.On("SaveUserMetadata", mock.Anything, md).Return(errors.New("unavailable")).Once()
	remote.On("SaveUserMetadata", mock.Anything, md).Return(nil).Once()

	// ACT & ASSERT: a failed push is attempted again.
	require.Error(t, svc.SyncUserMetadata(ctx, md))
	require.NoError(t, svc.SyncUserMetadata(ctx, md))
	require.NoError(t, svc.SyncUserMetadata(ctx, md))
	remote.AssertNumberOfCalls(t, "SaveUserMetadata", 2)

	// Changed values are pushed again.
	changed := md
	changed.Plan = "pro"
	remote.On("SaveUserMetadata", mock.Anything, changed).Return(nil).Once()
	require.NoError(t, svc.SyncUserMetadata(ctx, changed))
}

func TestAccountService_Notifications(t *testing.T) {
	remote := mocks.NewMockAccountRemote(t)
	svc := service.NewAccountService(remote, fastPolicy(), time.Minute, nil)
	ctx := context.Background()

	remote.On("ListNotifications", mock.Anything).Return([]model.Notification{{ID: "n1", Title: "Welcome"}}, nil).Once()
	remote.On("MarkNotificationRead", mock.Anything, "n1").Return(nil).Once()
	remote.On("TrackTemplateUsage", mock.Anything, "tpl-1").Return(nil).Once()

	list, err := svc.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, svc.MarkNotificationRead(ctx, "n1"))
	require.NoError(t, svc.TrackTemplateUsage(ctx, "tpl-1"))

	assert.ErrorIs(t, svc.MarkNotificationRead(ctx, ""), app_errors.ErrValidation)
	assert.ErrorIs(t, svc.TrackTemplateUsage(ctx, ""), app_errors.ErrValidation)
}
