// Package gateway is the single chokepoint for calls to the remote store.
// It attaches credentials, collapses identical concurrent calls, refreshes
// the token once on 401/403, and retries idempotent calls on network failure.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"chat-capture/backend/internal/auth"
	app_errors "chat-capture/backend/internal/errors"
)

// RequestOptions describes one call. It is serialized as part of the
// in-flight signature, so two calls with equal options share a result.
type RequestOptions struct {
	Method string `json:"method,omitempty"`
	Body   any    `json:"body,omitempty"`
	// AllowAnonymous lets the call proceed without a credential.
	AllowAnonymous bool `json:"allow_anonymous,omitempty"`
}

func (o RequestOptions) idempotent() bool {
	return o.Method == "" || strings.EqualFold(o.Method, http.MethodGet)
}

type Gateway struct {
	client  *http.Client
	baseURL string
	tokens  auth.TokenProvider

	inflight    singleflight.Group
	readPolicy  RetryPolicy
	writePolicy RetryPolicy
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

func WithReadPolicy(p RetryPolicy) Option {
	return func(g *Gateway) { g.readPolicy = p }
}

func WithWritePolicy(p RetryPolicy) Option {
	return func(g *Gateway) { g.writePolicy = p }
}

func New(baseURL string, tokens auth.TokenProvider, opts ...Option) *Gateway {
	g := &Gateway{
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      tokens,
		readPolicy:  ReadPolicy(),
		writePolicy: WritePolicy(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type response struct {
	status int
	body   []byte
}

// Request performs the call and returns the decoded JSON payload, or nil
// for a 2xx response without a JSON body.
func (g *Gateway) Request(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	key, err := signature(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("could not serialize request options: %w", err)
	}

	// The shared call must outlive any single waiter.
	callCtx := context.WithoutCancel(ctx)
	ch := g.inflight.DoChan(key, func() (any, error) {
		return g.do(callCtx, endpoint, opts)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		payload, _ := res.Val.(json.RawMessage)
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func signature(endpoint string, opts RequestOptions) (string, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	return endpoint + "|" + string(b), nil
}

func (g *Gateway) do(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	token, err := g.token(ctx, opts)
	if err != nil {
		return nil, err
	}

	resp, err := g.send(ctx, endpoint, opts, token)
	if err != nil {
		return nil, err
	}

	if isAuthFailure(resp.status) {
		if g.tokens == nil {
			return nil, newAPIError(resp.status, resp.body, app_errors.ErrAuthentication)
		}
		slog.Info("Auth rejected, refreshing token", "component", "gateway", "endpoint", endpoint, "status", resp.status)
		token, err = g.tokens.RefreshAuthToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: token refresh failed: %v", app_errors.ErrAuthentication, err)
		}
		resp, err = g.send(ctx, endpoint, opts, token)
		if err != nil {
			return nil, err
		}
		if isAuthFailure(resp.status) {
			return nil, newAPIError(resp.status, resp.body, app_errors.ErrAuthentication)
		}
	}

	if resp.status < 200 || resp.status >= 300 {
		return nil, newAPIError(resp.status, resp.body, nil)
	}
	if !json.Valid(resp.body) {
		return nil, nil
	}
	return json.RawMessage(resp.body), nil
}

func (g *Gateway) token(ctx context.Context, opts RequestOptions) (string, error) {
	if g.tokens == nil {
		if opts.AllowAnonymous {
			return "", nil
		}
		return "", fmt.Errorf("%w: no token provider configured", app_errors.ErrAuthentication)
	}
	token, err := g.tokens.GetAuthToken(ctx)
	if err != nil {
		if opts.AllowAnonymous {
			slog.Debug("Proceeding anonymously", "component", "gateway", "error", err)
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", app_errors.ErrAuthentication, err)
	}
	return token, nil
}

// send retries network-level failures according to the call class. HTTP
// error statuses are returned as responses, never retried here.
func (g *Gateway) send(ctx context.Context, endpoint string, opts RequestOptions, token string) (*response, error) {
	policy := g.writePolicy
	if opts.idempotent() {
		policy = g.readPolicy
	}

	var out *response
	err := Retry(ctx, policy, endpoint, func() error {
		resp, err := g.roundTrip(ctx, endpoint, opts, token)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	return out, nil
}

func (g *Gateway) roundTrip(ctx context.Context, endpoint string, opts RequestOptions, token string) (*response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("could not marshal request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+endpoint, body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("could not create http request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
