package intercept

import (
	"errors"
	"io"
	"sync"
)

// errBodyClosed ends a clone whose source was closed before EOF.
var errBodyClosed = errors.New("intercept: body closed before EOF")

// bodyTee accumulates bytes as the host reads its own body and serves them
// to any number of clone readers. Writes never block on readers.
type bodyTee struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []byte
	err  error
}

func newBodyTee() *bodyTee {
	t := &bodyTee{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *bodyTee) write(p []byte) {
	t.mu.Lock()
	if t.err == nil {
		t.buf = append(t.buf, p...)
	}
	t.mu.Unlock()
	t.cond.Broadcast()
}

// finish marks the end of the body. Only the first call counts.
func (t *bodyTee) finish(err error) {
	if err == nil {
		err = io.EOF
	}
	t.mu.Lock()
	if t.err == nil {
		t.err = err
	}
	t.mu.Unlock()
	t.cond.Broadcast()
}

func (t *bodyTee) newReader() io.Reader {
	return &cloneReader{t: t}
}

type cloneReader struct {
	t   *bodyTee
	off int
}

func (r *cloneReader) Read(p []byte) (int, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for r.off >= len(r.t.buf) && r.t.err == nil {
		r.t.cond.Wait()
	}
	if r.off < len(r.t.buf) {
		n := copy(p, r.t.buf[r.off:])
		r.off += n
		return n, nil
	}
	return 0, r.t.err
}

// teeReadCloser is handed back to the host in place of its response body.
type teeReadCloser struct {
	rc  io.ReadCloser
	tee *bodyTee
}

func (b *teeReadCloser) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.tee.write(p[:n])
	}
	if err != nil {
		b.tee.finish(err)
	}
	return n, err
}

func (b *teeReadCloser) Close() error {
	err := b.rc.Close()
	b.tee.finish(errBodyClosed)
	return err
}
