package hostapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// forwardedHeaders are copied from the host's own requests so our reads
// look like the user's session.
var forwardedHeaders = []string{"Authorization", "Cookie", "User-Agent", "Oai-Device-Id", "Oai-Language"}

// Reader reads from the host application's own endpoints.
type Reader interface {
	FetchConversation(ctx context.Context, conversationID string) ([]byte, error)
	RememberCredentials(h http.Header)
}

type client struct {
	client           *http.Client
	baseURL          string
	conversationPath string

	mu    sync.RWMutex
	creds http.Header
}

func NewClient(baseURL, conversationPath string) Reader {
	return &client{
		client:           &http.Client{Timeout: 30 * time.Second},
		baseURL:          strings.TrimRight(baseURL, "/"),
		conversationPath: conversationPath,
		creds:            http.Header{},
	}
}

// RememberCredentials keeps the session headers of the latest host request.
func (c *client) RememberCredentials(h http.Header) {
	next := http.Header{}
	for _, name := range forwardedHeaders {
		if v := h.Get(name); v != "" {
			next.Set(name, v)
		}
	}
	if len(next) == 0 {
		return
	}
	c.mu.Lock()
	c.creds = next
	c.mu.Unlock()
}

func (c *client) FetchConversation(ctx context.Context, conversationID string) ([]byte, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	endpoint := c.baseURL + strings.TrimRight(c.conversationPath, "/") + "/" + url.PathEscape(conversationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.mu.RLock()
	for name, values := range c.creds {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	c.mu.RUnlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("host returned non-200 status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
