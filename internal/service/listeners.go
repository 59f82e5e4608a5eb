package service

import (
	"log/slog"
	"sync"
)

// listeners is a set of callbacks notified off the caller's goroutine,
// one value at a time in the order notify was called. A panicking
// callback is logged and does not affect the others.
type listeners[T any] struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]func(T)
	name   string

	qmu      sync.Mutex
	queue    []delivery[T]
	draining bool
}

type delivery[T any] struct {
	fns   []func(T)
	value T
}

func newListeners[T any](name string) *listeners[T] {
	return &listeners[T]{fns: make(map[int]func(T)), name: name}
}

func (l *listeners[T]) add(fn func(T)) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.RLock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	if len(fns) == 0 {
		return
	}

	l.qmu.Lock()
	l.queue = append(l.queue, delivery[T]{fns: fns, value: v})
	if l.draining {
		l.qmu.Unlock()
		return
	}
	l.draining = true
	l.qmu.Unlock()
	go l.drain()
}

// drain delivers queued values until the queue is empty. At most one
// drain runs per listener set.
func (l *listeners[T]) drain() {
	for {
		l.qmu.Lock()
		if len(l.queue) == 0 {
			l.draining = false
			l.qmu.Unlock()
			return
		}
		d := l.queue[0]
		l.queue[0] = delivery[T]{}
		l.queue = l.queue[1:]
		l.qmu.Unlock()

		for _, fn := range d.fns {
			l.call(fn, d.value)
		}
	}
}

func (l *listeners[T]) call(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Listener panicked", "component", "service", "listener", l.name, "panic", r)
		}
	}()
	fn(v)
}
