package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore persists values as plain Redis strings and propagates change
// notifications over pub/sub channels named <prefix><key>.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	notifier *Notifier
	origin   string
	logger   *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisStore wraps an already connected client.
func NewRedisStore(client *redis.Client, channelPrefix string, logger *zap.Logger) *RedisStore {
	if channelPrefix == "" {
		channelPrefix = "kv:changed:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:   client,
		prefix:   channelPrefix,
		notifier: NewNotifier(),
		origin:   uuid.NewString(),
		logger:   logger,
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores the value without expiry, notifies local subscribers and
// publishes the change for other processes.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.notifier.Notify(ChangeEvent{Key: key, Origin: s.origin, At: time.Now().UTC()})
	if err := s.client.Publish(ctx, s.channel(key), s.origin).Err(); err != nil {
		s.logger.Warn("redis publish failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Subscribe implements Store.
func (s *RedisStore) Subscribe(key string, fn Listener) func() {
	return s.notifier.Subscribe(key, fn)
}

// Start listens for changes published by other processes. Safe to call once.
func (s *RedisStore) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pubsub != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	pubsub := s.client.PSubscribe(ctx, s.prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	s.pubsub = pubsub
	s.cancel = cancel

	s.wg.Add(1)
	go s.listen(ctx, pubsub)
	s.logger.Info("redis change listener started", zap.String("pattern", s.prefix+"*"))
	return nil
}

func (s *RedisStore) listen(ctx context.Context, pubsub *redis.PubSub) {
	defer s.wg.Done()
	for {
		msg, err := pubsub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Warn("redis change listener receive failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		s.handle(msg)
	}
}

// handle routes a pub/sub message. go-redis re-issues PSUBSCRIBE after a
// reconnect; its confirmation means publishes may have been missed.
func (s *RedisStore) handle(msg interface{}) {
	switch m := msg.(type) {
	case *redis.Subscription:
		if m.Kind == "psubscribe" {
			s.logger.Info("redis change listener resubscribed, resyncing subscribers")
			s.notifier.Resync(OriginResync)
		}
	case *redis.Message:
		s.dispatch(m.Channel, m.Payload)
	}
}

func (s *RedisStore) dispatch(channel, origin string) {
	if origin == s.origin || !strings.HasPrefix(channel, s.prefix) {
		return
	}
	key := strings.TrimPrefix(channel, s.prefix)
	s.notifier.Notify(ChangeEvent{Key: key, Origin: origin, At: time.Now().UTC()})
}

func (s *RedisStore) channel(key string) string {
	return s.prefix + key
}

// Close stops the change listener. The client is owned by the caller.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	pubsub, cancel := s.pubsub, s.cancel
	s.pubsub, s.cancel = nil, nil
	s.mu.Unlock()

	if pubsub == nil {
		return nil
	}
	cancel()
	err := pubsub.Close()
	s.wg.Wait()
	return err
}
