package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore keeps key/value pairs in a single table and announces writes
// with NOTIFY on a configurable channel.
type PostgresStore struct {
	db       *sqlx.DB
	table    string
	channel  string
	notifier *Notifier
	origin   string
	logger   *zap.Logger

	mu       sync.Mutex
	listener *pq.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type notifyPayload struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// NewPostgresStore validates the table and channel identifiers and wraps db.
func NewPostgresStore(db *sqlx.DB, table, channel string, logger *zap.Logger) (*PostgresStore, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid kv table name %q", table)
	}
	if !identPattern.MatchString(channel) {
		return nil, fmt.Errorf("invalid kv notify channel %q", channel)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		db:       db,
		table:    table,
		channel:  channel,
		notifier: NewNotifier(),
		origin:   uuid.NewString(),
		logger:   logger,
	}, nil
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure kv schema: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table)
	var value []byte
	if err := s.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get kv %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value and emits NOTIFY so other processes refresh.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table)
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, query, key, value, now); err != nil {
		return fmt.Errorf("set kv %s: %w", key, err)
	}
	s.notifier.Notify(ChangeEvent{Key: key, Origin: s.origin, At: now})

	payload, err := json.Marshal(notifyPayload{Key: key, Origin: s.origin})
	if err != nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, s.channel, string(payload)); err != nil {
		s.logger.Warn("kv notify failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Subscribe implements Store.
func (s *PostgresStore) Subscribe(key string, fn Listener) func() {
	return s.notifier.Subscribe(key, fn)
}

// Listen opens a dedicated LISTEN connection and forwards notifications from
// other processes to local subscribers.
func (s *PostgresStore) Listen(ctx context.Context, dsn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	listener := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn("kv listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(s.channel); err != nil {
		_ = listener.Close()
		return fmt.Errorf("listen %s: %w", s.channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.listener = listener
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				s.handle(n)
			}
		}
	}()
	return nil
}

// handle forwards a notification. pq sends nil after re-establishing the
// connection, so every subscriber is told to re-read.
func (s *PostgresStore) handle(n *pq.Notification) {
	if n == nil {
		s.logger.Info("kv listener reconnected, resyncing subscribers", zap.String("channel", s.channel))
		s.notifier.Resync(OriginResync)
		return
	}
	s.dispatch(n.Extra)
}

func (s *PostgresStore) dispatch(extra string) {
	var payload notifyPayload
	if err := json.Unmarshal([]byte(extra), &payload); err != nil {
		s.logger.Warn("kv notify payload malformed", zap.String("payload", extra), zap.Error(err))
		return
	}
	if payload.Origin == s.origin || payload.Key == "" {
		return
	}
	s.notifier.Notify(ChangeEvent{Key: payload.Key, Origin: payload.Origin, At: time.Now().UTC()})
}

// Close stops the listener. The database handle is owned by the caller.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	listener, cancel := s.listener, s.cancel
	s.listener, s.cancel = nil, nil
	s.mu.Unlock()

	if listener == nil {
		return nil
	}
	cancel()
	err := listener.Close()
	s.wg.Wait()
	return err
}
