// Package intercept makes the request/response pairs flowing through the
// proxy observable without changing what either side sends or receives.
package intercept

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Exchange is one observed request/response pair.
type Exchange struct {
	ID          string
	Method      string
	URL         string
	RequestBody []byte
	// RequestHeader is a copy of the headers the host sent.
	RequestHeader http.Header
	Status        int
	Header        http.Header
	// Response is a clone of the response body. It fills as the host reads
	// its own copy and reports the host's read error (or io.EOF) at the end.
	Response  io.Reader
	StartedAt time.Time
}

// Path returns the URL path, or "" when the URL cannot be parsed.
func (e *Exchange) Path() string {
	u, err := url.Parse(e.URL)
	if err != nil {
		return ""
	}
	return u.Path
}

// RequestJSON parses the request body. When the body is not JSON the raw
// text is passed through as a string result and ok is false.
func (e *Exchange) RequestJSON() (result gjson.Result, ok bool) {
	if gjson.ValidBytes(e.RequestBody) {
		return gjson.ParseBytes(e.RequestBody), true
	}
	return gjson.Result{Type: gjson.String, Str: string(e.RequestBody)}, false
}

// ReadResponse drains the response clone.
func (e *Exchange) ReadResponse() ([]byte, error) {
	if e.Response == nil {
		return nil, nil
	}
	return io.ReadAll(e.Response)
}

// Observer is the narrow interface the rest of the pipeline depends on.
// Tests supply fakes that replay recorded exchanges.
type Observer interface {
	OnMatchingExchange(match func(url string) bool, cb func(*Exchange))
}

type subscription struct {
	match func(string) bool
	cb    func(*Exchange)
}

// Interceptor wraps the process's two HTTP primitives: the client-side
// RoundTripper and the server-side Handler.
type Interceptor struct {
	mu   sync.RWMutex
	subs []subscription
	// inflight counts callbacks that have not returned yet.
	inflight sync.WaitGroup
}

func New() *Interceptor {
	return &Interceptor{}
}

func (i *Interceptor) OnMatchingExchange(match func(url string) bool, cb func(*Exchange)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.subs = append(i.subs, subscription{match: match, cb: cb})
}

func (i *Interceptor) matching(rawURL string) []subscription {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var out []subscription
	for _, s := range i.subs {
		if safeMatch(s.match, rawURL) {
			out = append(out, s)
		}
	}
	return out
}

func safeMatch(match func(string) bool, rawURL string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("URL predicate panicked", "component", "intercept", "url", rawURL, "panic", r)
			ok = false
		}
	}()
	return match(rawURL)
}

// dispatch hands every subscriber its own clone reader and runs the
// callbacks off the host's call path.
func (i *Interceptor) dispatch(subs []subscription, ex Exchange, tee *bodyTee) {
	for _, s := range subs {
		view := ex
		view.Response = tee.newReader()
		i.inflight.Add(1)
		go func(cb func(*Exchange), ex *Exchange) {
			defer i.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Exchange callback panicked", "component", "intercept", "url", ex.URL, "panic", r)
				}
			}()
			cb(ex)
		}(s.cb, &view)
	}
}

// Wait blocks until every dispatched callback has returned or ctx is done.
func (i *Interceptor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		i.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readRequestBody returns a copy of the request body and, if the body had
// to be consumed, a request carrying an identical replacement.
func readRequestBody(req *http.Request) ([]byte, *http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, req, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err == nil {
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err == nil {
				return data, req, nil
			}
		}
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, req, err
	}
	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(data))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return data, out, nil
}

// Transport wraps base so matching calls are observed.
func (i *Interceptor) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{i: i, base: base}
}

type transport struct {
	i    *Interceptor
	base http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	subs := t.i.matching(req.URL.String())
	if len(subs) == 0 {
		return t.base.RoundTrip(req)
	}

	started := time.Now()
	body, out, err := readRequestBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp == nil {
		return resp, err
	}

	tee := newBodyTee()
	if resp.Body == nil {
		tee.finish(io.EOF)
	} else {
		resp.Body = &teeReadCloser{rc: resp.Body, tee: tee}
	}

	t.i.dispatch(subs, Exchange{
		ID:            uuid.NewString(),
		Method:        req.Method,
		URL:           req.URL.String(),
		RequestBody:   body,
		RequestHeader: req.Header.Clone(),
		Status:        resp.StatusCode,
		Header:        resp.Header.Clone(),
		StartedAt:     started,
	}, tee)
	return resp, nil
}

// Middleware wraps next so matching requests handled by it are observed.
func (i *Interceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		full := requestURL(r)
		subs := i.matching(full)
		if len(subs) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		body, out, err := readRequestBody(r)
		if err != nil {
			slog.Warn("Could not capture request body", "component", "intercept", "url", full, "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		rec := &recorder{
			ResponseWriter: w,
			tee:            newBodyTee(),
			onHeader: func(status int, header http.Header, tee *bodyTee) {
				i.dispatch(subs, Exchange{
					ID:            uuid.NewString(),
					Method:        r.Method,
					URL:           full,
					RequestBody:   body,
					RequestHeader: r.Header.Clone(),
					Status:        status,
					Header:        header.Clone(),
					StartedAt:     time.Now(),
				}, tee)
			},
		}
		defer rec.finish()
		next.ServeHTTP(rec, out)
	})
}

func requestURL(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// recorder tees everything written to the host's ResponseWriter.
type recorder struct {
	http.ResponseWriter
	tee      *bodyTee
	once     sync.Once
	onHeader func(status int, header http.Header, tee *bodyTee)
}

func (rw *recorder) announce(status int) {
	rw.once.Do(func() { rw.onHeader(status, rw.Header(), rw.tee) })
}

func (rw *recorder) WriteHeader(status int) {
	rw.announce(status)
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recorder) Write(p []byte) (int, error) {
	rw.announce(http.StatusOK)
	n, err := rw.ResponseWriter.Write(p)
	if n > 0 {
		rw.tee.write(p[:n])
	}
	return n, err
}

func (rw *recorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *recorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *recorder) finish() {
	rw.announce(http.StatusOK)
	rw.tee.finish(io.EOF)
}
