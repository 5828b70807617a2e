package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "absent")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreSetCopiesValue(t *testing.T) {
	store := NewMemoryStore()
	value := []byte(`{"a":1}`)
	require.NoError(t, store.Set(context.Background(), "k", value))
	value[0] = 'X'

	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	got[0] = 'Y'
	again, _ := store.Get(context.Background(), "k")
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestMemoryStoreNotifiesSubscribers(t *testing.T) {
	store := NewMemoryStore()
	var events []ChangeEvent
	unsubscribe := store.Subscribe("ledger", func(evt ChangeEvent) { events = append(events, evt) })

	require.NoError(t, store.Set(context.Background(), "ledger", []byte("1")))
	require.NoError(t, store.Set(context.Background(), "other", []byte("1")))
	require.Len(t, events, 1)
	assert.Equal(t, "ledger", events[0].Key)
	assert.NotEmpty(t, events[0].Origin)

	unsubscribe()
	unsubscribe()
	require.NoError(t, store.Set(context.Background(), "ledger", []byte("2")))
	assert.Len(t, events, 1)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Set(ctx, "k", []byte("v")))
	_, err := store.Get(ctx, "k")
	assert.Error(t, err)
}

func TestNotifierListenerMayUnsubscribeItself(t *testing.T) {
	n := NewNotifier()
	calls := 0
	var unsubscribe func()
	unsubscribe = n.Subscribe("k", func(ChangeEvent) {
		calls++
		unsubscribe()
	})
	n.Notify(ChangeEvent{Key: "k"})
	n.Notify(ChangeEvent{Key: "k"})
	assert.Equal(t, 1, calls)
	assert.Zero(t, n.Count("k"))
}
