package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps values in process memory. It backs tests and single-node demos.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string][]byte
	notifier *Notifier
	origin   string
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string][]byte),
		notifier: NewNotifier(),
		origin:   uuid.NewString(),
	}
}

// Get returns a copy of the stored bytes.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Set replaces the value and notifies subscribers synchronously.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.values[key] = stored
	s.mu.Unlock()

	s.notifier.Notify(ChangeEvent{Key: key, Origin: s.origin, At: time.Now().UTC()})
	return nil
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(key string, fn Listener) func() {
	return s.notifier.Subscribe(key, fn)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
