package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TokenProvider supplies bearer credentials to the request gateway.
// Both methods are opaque to the pipeline.
type TokenProvider interface {
	GetAuthToken(ctx context.Context) (string, error)
	RefreshAuthToken(ctx context.Context) (string, error)
}

// ErrNoToken is returned when no credential is configured.
var ErrNoToken = errors.New("auth: no token available")

// StaticTokenProvider always hands out the same token. Refresh is a no-op.
type StaticTokenProvider struct {
	Token string
}

func (p StaticTokenProvider) GetAuthToken(_ context.Context) (string, error) {
	if p.Token == "" {
		return "", ErrNoToken
	}
	return p.Token, nil
}

func (p StaticTokenProvider) RefreshAuthToken(ctx context.Context) (string, error) {
	return p.GetAuthToken(ctx)
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// HTTPTokenProvider fetches tokens from a token endpoint and caches them
// until they expire. RefreshAuthToken always goes to the network.
type HTTPTokenProvider struct {
	client *http.Client
	url    string

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

func NewHTTPTokenProvider(url string) *HTTPTokenProvider {
	return &HTTPTokenProvider{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    strings.TrimRight(url, "/"),
		now:    time.Now,
	}
}

func (p *HTTPTokenProvider) GetAuthToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.token != "" && (p.expires.IsZero() || p.now().Before(p.expires)) {
		tok := p.token
		p.mu.Unlock()
		return tok, nil
	}
	p.mu.Unlock()
	return p.fetch(ctx, p.url+"/token")
}

func (p *HTTPTokenProvider) RefreshAuthToken(ctx context.Context) (string, error) {
	return p.fetch(ctx, p.url+"/refresh")
}

func (p *HTTPTokenProvider) fetch(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", fmt.Errorf("could not create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("could not decode token response: %w", err)
	}
	if tr.Token == "" {
		return "", ErrNoToken
	}

	p.mu.Lock()
	p.token = tr.Token
	p.expires = time.Time{}
	if tr.ExpiresIn > 0 {
		p.expires = p.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	p.mu.Unlock()
	return tr.Token, nil
}
