// Package batch turns a growing queue of chats and messages into discrete
// delivery calls, flushing on a debounce timer or when enough messages
// are waiting, whichever comes first.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"chat-capture/backend/internal/model"
)

const (
	DefaultDebounce = 2 * time.Second
	DefaultMaxSize  = 5
)

// Deliverer sends one combined batch. It either accepts all of it or
// none of it.
type Deliverer interface {
	SaveBatch(ctx context.Context, batch model.Batch) error
}

type Stats struct {
	PendingChats    int       `json:"pending_chats"`
	PendingMessages int       `json:"pending_messages"`
	Flushes         int       `json:"flushes"`
	Failures        int       `json:"failures"`
	LastFlush       time.Time `json:"last_flush,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
}

type Scheduler struct {
	deliverer Deliverer
	clock     clock.Clock
	debounce  time.Duration
	maxSize   int

	// flushMu serializes deliveries; mu guards everything below it.
	flushMu sync.Mutex

	mu       sync.Mutex
	chats    *orderedmap.OrderedMap[string, model.ChatInfo]
	messages *orderedmap.OrderedMap[string, model.MessageRecord]
	timer    *clock.Timer
	stopped  bool
	stats    Stats
	// backingOff is set after a failed delivery. The retry timer then
	// decides when to try again and the size trigger stays quiet.
	backingOff bool
	// sizeQueued is set while a size-triggered flush waits to run.
	sizeQueued bool
}

type Option func(*Scheduler)

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

func WithMaxSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

func New(deliverer Deliverer, opts ...Option) *Scheduler {
	s := &Scheduler{
		deliverer: deliverer,
		clock:     clock.New(),
		debounce:  DefaultDebounce,
		maxSize:   DefaultMaxSize,
		chats:     orderedmap.New[string, model.ChatInfo](),
		messages:  orderedmap.New[string, model.MessageRecord](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddChat queues a chat record. A later record for the same chat replaces
// the earlier one.
func (s *Scheduler) AddChat(chat model.ChatInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats.Set(chat.ID, chat)
	s.armLocked()
}

// AddMessage queues a message record. A record whose id is already
// pending is ignored.
func (s *Scheduler) AddMessage(rec model.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages.Get(rec.MessageID); ok {
		return
	}
	s.messages.Set(rec.MessageID, rec)

	if s.messages.Len() >= s.maxSize && !s.stopped && !s.backingOff {
		if !s.sizeQueued {
			s.sizeQueued = true
			s.stopTimerLocked()
			go s.flushInBackground("size")
		}
		return
	}
	s.armLocked()
}

// armLocked starts the debounce timer unless one is already running, so
// the delay counts from the first unflushed item.
func (s *Scheduler) armLocked() {
	if s.stopped || s.timer != nil {
		return
	}
	if s.chats.Len() == 0 && s.messages.Len() == 0 {
		return
	}
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.flushInBackground("timer")
	})
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) flushInBackground(trigger string) {
	if err := s.flush(context.Background()); err != nil {
		slog.Warn("Batch delivery failed, keeping items queued", "component", "batch", "trigger", trigger, "error", err)
	}
}

// ForceFlush cancels any pending timer and delivers immediately. It waits
// for a delivery already in flight before starting its own.
func (s *Scheduler) ForceFlush(ctx context.Context) error {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
	return s.flush(ctx)
}

func (s *Scheduler) flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	s.stopTimerLocked()
	s.sizeQueued = false
	if s.chats.Len() == 0 && s.messages.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	chats, messages := s.chats, s.messages
	// Items arriving during delivery go to fresh collections.
	s.chats = orderedmap.New[string, model.ChatInfo]()
	s.messages = orderedmap.New[string, model.MessageRecord]()
	s.mu.Unlock()

	batch := toBatch(chats, messages)
	slog.Debug("Flushing batch", "component", "batch", "chats", len(batch.Chats), "messages", len(batch.Messages))
	err := s.deliverer.SaveBatch(ctx, batch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.restoreLocked(chats, messages)
		s.stats.Failures++
		s.stats.LastError = err.Error()
		s.backingOff = true
		s.armLocked()
		return err
	}

	s.backingOff = false
	s.stats.Flushes++
	s.stats.LastFlush = s.clock.Now()
	s.stats.LastError = ""
	s.armLocked()
	return nil
}

// restoreLocked puts older items back in front of anything queued since.
// Newer chat titles win; the first copy of a message wins.
func (s *Scheduler) restoreLocked(chats *orderedmap.OrderedMap[string, model.ChatInfo], messages *orderedmap.OrderedMap[string, model.MessageRecord]) {
	for pair := s.chats.Oldest(); pair != nil; pair = pair.Next() {
		chats.Set(pair.Key, pair.Value)
	}
	for pair := s.messages.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := messages.Get(pair.Key); !ok {
			messages.Set(pair.Key, pair.Value)
		}
	}
	s.chats, s.messages = chats, messages
}

// Restore queues a previously persisted batch ahead of current items.
func (s *Scheduler) Restore(batch model.Batch) {
	chats := orderedmap.New[string, model.ChatInfo]()
	for _, c := range batch.Chats {
		chats.Set(c.ID, c)
	}
	messages := orderedmap.New[string, model.MessageRecord]()
	for _, m := range batch.Messages {
		if _, ok := messages.Get(m.MessageID); !ok {
			messages.Set(m.MessageID, m)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(chats, messages)
	s.armLocked()
}

// Snapshot returns a copy of everything still waiting for delivery.
func (s *Scheduler) Snapshot() model.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toBatch(s.chats, s.messages)
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.PendingChats = s.chats.Len()
	out.PendingMessages = s.messages.Len()
	return out
}

// Stop cancels the timer and stops scheduling new flushes. ForceFlush
// still works afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopTimerLocked()
}

func toBatch(chats *orderedmap.OrderedMap[string, model.ChatInfo], messages *orderedmap.OrderedMap[string, model.MessageRecord]) model.Batch {
	b := model.Batch{
		Chats:    make([]model.ChatInfo, 0, chats.Len()),
		Messages: make([]model.MessageRecord, 0, messages.Len()),
	}
	for pair := chats.Oldest(); pair != nil; pair = pair.Next() {
		b.Chats = append(b.Chats, pair.Value)
	}
	for pair := messages.Oldest(); pair != nil; pair = pair.Next() {
		b.Messages = append(b.Messages, pair.Value)
	}
	return b
}
