package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"

	app_errors "chat-capture/backend/internal/errors"
	"chat-capture/backend/internal/gateway"
	"chat-capture/backend/internal/model"
)

// AccountRemote is the part of the remote store the account service uses.
type AccountRemote interface {
	GetUserStats(ctx context.Context) (*model.UserStats, error)
	SaveUserMetadata(ctx context.Context, md model.UserMetadata) error
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	TrackTemplateUsage(ctx context.Context, templateID string) error
}

// StatsPolicy retries stats reads with growing delays.
func StatsPolicy() gateway.RetryPolicy {
	return gateway.RetryPolicy{MaxRetries: 3, Delay: time.Second, Schedule: gateway.Exponential}
}

// AccountService handles user-level data: stats, metadata, notifications
// and template usage tracking.
type AccountService struct {
	remote  AccountRemote
	policy  gateway.RetryPolicy
	maxAge  time.Duration
	clock   clock.Clock
	mu      sync.Mutex
	stats   *model.UserStats
	fetched time.Time
	sentMD  *model.UserMetadata
}

func NewAccountService(remote AccountRemote, policy gateway.RetryPolicy, maxAge time.Duration, clk clock.Clock) *AccountService {
	if clk == nil {
		clk = clock.New()
	}
	return &AccountService{remote: remote, policy: policy, maxAge: maxAge, clock: clk}
}

// Stats returns cached stats while they are younger than maxAge.
func (s *AccountService) Stats(ctx context.Context) (*model.UserStats, error) {
	s.mu.Lock()
	if s.stats != nil && s.clock.Since(s.fetched) < s.maxAge {
		out := *s.stats
		s.mu.Unlock()
		return &out, nil
	}
	s.mu.Unlock()
	return s.RefreshStats(ctx)
}

// RefreshStats reads stats from the remote store. Server errors and rate
// limits are retried with the stats policy. Network failures were already
// retried by the gateway's read policy, and auth failures and client
// errors are final.
func (s *AccountService) RefreshStats(ctx context.Context) (*model.UserStats, error) {
	var stats *model.UserStats
	err := gateway.Retry(ctx, s.policy, "stats refresh", func() error {
		var err error
		stats, err = s.remote.GetUserStats(ctx)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not refresh user stats: %w", err)
	}

	s.mu.Lock()
	s.stats = stats
	s.fetched = s.clock.Now()
	s.mu.Unlock()

	out := *stats
	return &out, nil
}

func retryable(err error) bool {
	if errors.Is(err, app_errors.ErrAuthentication) {
		return false
	}
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status >= http.StatusInternalServerError || apiErr.Status == http.StatusTooManyRequests
}

// RunStatsRefresher refreshes stats every interval until ctx is done.
func (s *AccountService) RunStatsRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RefreshStats(ctx); err != nil {
				slog.Warn("Periodic stats refresh failed", "component", "account", "error", err)
			}
		}
	}
}

// SyncUserMetadata pushes metadata unless the same values were already sent.
func (s *AccountService) SyncUserMetadata(ctx context.Context, md model.UserMetadata) error {
	s.mu.Lock()
	same := s.sentMD != nil && reflect.DeepEqual(*s.sentMD, md)
	s.mu.Unlock()
	if same {
		return nil
	}

	if err := s.remote.SaveUserMetadata(ctx, md); err != nil {
		return fmt.Errorf("could not save user metadata: %w", err)
	}

	s.mu.Lock()
	s.sentMD = &md
	s.mu.Unlock()
	return nil
}

func (s *AccountService) Notifications(ctx context.Context) ([]model.Notification, error) {
	return s.remote.ListNotifications(ctx)
}

func (s *AccountService) MarkNotificationRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: notification id is required", app_errors.ErrValidation)
	}
	return s.remote.MarkNotificationRead(ctx, id)
}

func (s *AccountService) TrackTemplateUsage(ctx context.Context, templateID string) error {
	if templateID == "" {
		return fmt.Errorf("%w: template id is required", app_errors.ErrValidation)
	}
	return s.remote.TrackTemplateUsage(ctx, templateID)
}
