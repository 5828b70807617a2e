package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/worktime-api/pkg/kvstore"
)

// ErrMalformed marks persisted data that could not be decoded.
var ErrMalformed = errors.New("malformed persisted value")

// readJSON decodes key into dest. It reports false with a nil error when the
// key has never been written.
func readJSON(ctx context.Context, store kvstore.Store, key string, dest interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", key, ErrMalformed, err)
	}
	return true, nil
}

func writeJSON(ctx context.Context, store kvstore.Store, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
