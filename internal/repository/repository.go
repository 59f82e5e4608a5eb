package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chat-capture/backend/internal/model"
)

const (
	// KnownChatsKey holds the last-known conversation list.
	KnownChatsKey = "known_chats"
	// PendingBatchKey holds a batch that could not be delivered before shutdown.
	PendingBatchKey = "pending_batch"
)

// Cache is a small key/value store that survives restarts.
// This interface makes it easy to switch storage implementations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is the typed view of a Cache used by the pipeline.
type Store struct {
	cache Cache
}

func NewStore(cache Cache) *Store {
	return &Store{cache: cache}
}

// LoadChats returns the known chat list, or an empty list if none was saved.
func (s *Store) LoadChats(ctx context.Context) ([]model.ChatInfo, error) {
	var chats []model.ChatInfo
	if err := s.getJSON(ctx, KnownChatsKey, &chats); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.ChatInfo{}, nil
		}
		return nil, err
	}
	return chats, nil
}

func (s *Store) SaveChats(ctx context.Context, chats []model.ChatInfo) error {
	return s.setJSON(ctx, KnownChatsKey, chats)
}

// LoadPending returns the persisted pending batch, or nil if there is none.
func (s *Store) LoadPending(ctx context.Context) (*model.Batch, error) {
	var batch model.Batch
	if err := s.getJSON(ctx, PendingBatchKey, &batch); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (s *Store) SavePending(ctx context.Context, batch model.Batch) error {
	return s.setJSON(ctx, PendingBatchKey, batch)
}

func (s *Store) ClearPending(ctx context.Context) error {
	return s.cache.Delete(ctx, PendingBatchKey)
}

func (s *Store) getJSON(ctx context.Context, key string, out any) error {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("could not decode %q: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode %q: %w", key, err)
	}
	return s.cache.Set(ctx, key, raw)
}
