package kvstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier fans change events out to in-process listeners keyed by store key.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[string]Listener
}

// NewNotifier constructs an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[string]map[string]Listener)}
}

// Subscribe registers fn for key and returns a function removing it.
func (n *Notifier) Subscribe(key string, fn Listener) func() {
	id := uuid.NewString()

	n.mu.Lock()
	if n.listeners[key] == nil {
		n.listeners[key] = make(map[string]Listener)
	}
	n.listeners[key][id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.listeners[key], id)
			if len(n.listeners[key]) == 0 {
				delete(n.listeners, key)
			}
		})
	}
}

// Notify delivers evt to every listener of evt.Key. Listeners run outside the
// lock so they may subscribe or unsubscribe.
func (n *Notifier) Notify(evt ChangeEvent) {
	n.mu.RLock()
	subs := make([]Listener, 0, len(n.listeners[evt.Key]))
	for _, fn := range n.listeners[evt.Key] {
		subs = append(subs, fn)
	}
	n.mu.RUnlock()

	for _, fn := range subs {
		fn(evt)
	}
}

// Resync notifies every subscribed key with origin. Backends call it after
// their change feed reconnects, since writes made during the gap were missed.
func (n *Notifier) Resync(origin string) {
	n.mu.RLock()
	keys := make([]string, 0, len(n.listeners))
	for key := range n.listeners {
		keys = append(keys, key)
	}
	n.mu.RUnlock()

	at := time.Now().UTC()
	for _, key := range keys {
		n.Notify(ChangeEvent{Key: key, Origin: origin, At: at})
	}
}

// Count returns the number of listeners registered for key.
func (n *Notifier) Count(key string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners[key])
}
