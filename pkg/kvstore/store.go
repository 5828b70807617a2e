// Package kvstore is the durable key-value medium shared by the employee and
// administrator views. Every backend offers plain get/set plus change
// notifications scoped to the storage medium, so observers in other
// processes (or tabs) learn when a key they display has been rewritten.
package kvstore

import (
	"context"
	"time"

	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = appErrors.ErrKeyNotFound

// OriginResync marks events raised after a change feed reconnect rather than
// by a specific write.
const OriginResync = "resync"

// ChangeEvent describes a completed write.
type ChangeEvent struct {
	Key    string    `json:"key"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Listener receives change events. Listeners must not block.
type Listener func(ChangeEvent)

// Store is the injectable key-value abstraction.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Subscribe(key string, fn Listener) (unsubscribe func())
	Close() error
}
