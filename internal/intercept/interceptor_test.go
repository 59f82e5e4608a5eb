package intercept

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchPath(fragment string) func(string) bool {
	return func(u string) bool { return strings.Contains(u, fragment) }
}

// collect registers a callback that drains the clone and forwards the result.
func collect(i *Interceptor, fragment string) <-chan capturedExchange {
	out := make(chan capturedExchange, 4)
	i.OnMatchingExchange(matchPath(fragment), func(ex *Exchange) {
		body, err := ex.ReadResponse()
		out <- capturedExchange{ex: ex, body: string(body), err: err}
	})
	return out
}

type capturedExchange struct {
	ex   *Exchange
	body string
	err  error
}

func waitFor(t *testing.T, ch <-chan capturedExchange) capturedExchange {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exchange")
		return capturedExchange{}
	}
}

func TestInterceptor_Transport(t *testing.T) {
	var serverSaw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		serverSaw = string(b)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: hello\n\n"))
	}))
	defer server.Close()

	t.Run("Captures matching exchange without altering it", func(t *testing.T) {
		i := New()
		captured := collect(i, "/backend-api/conversation")
		client := &http.Client{Transport: i.Transport(nil)}

		// A streaming body without GetBody forces the read-and-replace path.
		pr, pw := io.Pipe()
		go func() {
			_, _ = pw.Write([]byte(`{"action":"next"}`))
			_ = pw.Close()
		}()
		req, err := http.NewRequest(http.MethodPost, server.URL+"/backend-api/conversation", pr)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		hostBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		assert.Equal(t, "data: hello\n\n", string(hostBody))
		assert.Equal(t, `{"action":"next"}`, serverSaw)

		c := waitFor(t, captured)
		require.NoError(t, c.err)
		assert.Equal(t, "data: hello\n\n", c.body)
		assert.Equal(t, http.StatusOK, c.ex.Status)
		assert.Equal(t, http.MethodPost, c.ex.Method)
		assert.Equal(t, "/backend-api/conversation", c.ex.Path())
		assert.Equal(t, `{"action":"next"}`, string(c.ex.RequestBody))

		parsed, ok := c.ex.RequestJSON()
		assert.True(t, ok)
		assert.Equal(t, "next", parsed.Get("action").String())
	})

	t.Run("Plain text body is passed through raw", func(t *testing.T) {
		i := New()
		captured := collect(i, "/backend-api")
		client := &http.Client{Transport: i.Transport(nil)}

		resp, err := client.Post(server.URL+"/backend-api/other", "text/plain", strings.NewReader("not json"))
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		c := waitFor(t, captured)
		parsed, ok := c.ex.RequestJSON()
		assert.False(t, ok)
		assert.Equal(t, "not json", parsed.String())
		assert.Equal(t, "not json", serverSaw)
	})

	t.Run("Non-matching calls pass through", func(t *testing.T) {
		i := New()
		captured := collect(i, "/never")
		client := &http.Client{Transport: i.Transport(nil)}

		resp, err := client.Get(server.URL + "/static/app.js")
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		select {
		case <-captured:
			t.Fatal("non-matching call was observed")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Panicking callback does not affect the host", func(t *testing.T) {
		i := New()
		i.OnMatchingExchange(matchPath("/"), func(*Exchange) { panic("boom") })
		i.OnMatchingExchange(func(string) bool { panic("bad predicate") }, func(*Exchange) {})
		client := &http.Client{Transport: i.Transport(nil)}

		resp, err := client.Get(server.URL + "/backend-api/conversation")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, "data: hello\n\n", string(body))
	})

	t.Run("Early close truncates the clone", func(t *testing.T) {
		i := New()
		captured := collect(i, "/backend-api")
		client := &http.Client{Transport: i.Transport(nil)}

		resp, err := client.Get(server.URL + "/backend-api/conversation")
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		c := waitFor(t, captured)
		assert.ErrorIs(t, c.err, errBodyClosed)
	})
}

func TestInterceptor_Middleware(t *testing.T) {
	i := New()
	captured := collect(i, "/backend-api/conversations")

	var handlerSaw string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		handlerSaw = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	h := i.Middleware(next)

	req := httptest.NewRequest(http.MethodPost, "/backend-api/conversations?offset=0", strings.NewReader(`{"q":1}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"items":[]}`, rr.Body.String())
	assert.Equal(t, `{"q":1}`, handlerSaw)

	c := waitFor(t, captured)
	require.NoError(t, c.err)
	assert.Equal(t, http.StatusCreated, c.ex.Status)
	assert.Equal(t, `{"items":[]}`, c.body)
	assert.Equal(t, "http://example.com/backend-api/conversations?offset=0", c.ex.URL)

	t.Run("Non-matching requests pass through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestInterceptor_Wait(t *testing.T) {
	// ARRANGE: a callback that holds on until released.
	i := New()
	release := make(chan struct{})
	finished := make(chan struct{})
	i.OnMatchingExchange(matchPath("/slow"), func(ex *Exchange) {
		<-release
		close(finished)
	})
	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	// ACT & ASSERT: Wait gives up with the context while the callback runs.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, i.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, i.Wait(context.Background()))
	select {
	case <-finished:
	default:
		t.Fatal("Wait returned before the callback finished")
	}
}

func TestCloneReader_MultipleReaders(t *testing.T) {
	tee := newBodyTee()
	a, b := tee.newReader(), tee.newReader()

	tee.write([]byte("data: one\n\n"))
	tee.write([]byte("data: two\n\n"))
	tee.finish(nil)

	gotA, err := io.ReadAll(a)
	require.NoError(t, err)
	gotB, err := io.ReadAll(b)
	require.NoError(t, err)
	assert.Equal(t, "data: one\n\ndata: two\n\n", string(gotA))
	assert.Equal(t, string(gotA), string(gotB))
}
