package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ReadStatus tells a caller why a record did or did not decode. Stores
// expose only presence to their own callers, but keep the distinction for
// logging.
type ReadStatus int

const (
	Present ReadStatus = iota
	Absent
	Corrupt
)

func (s ReadStatus) String() string {
	switch s {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "corrupt"
	}
}

var jsonNull = []byte("null")

// ReadJSON loads key and decodes it into dst. An empty or JSON null payload
// reads as Absent. Storage failures and undecodable payloads both come back
// as Corrupt with the cause attached.
func ReadJSON(ctx context.Context, store Store, key string, dst any) (ReadStatus, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Absent, nil
	}
	if err != nil {
		return Corrupt, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return Absent, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return Corrupt, fmt.Errorf("decode %s: %w", key, err)
	}
	return Present, nil
}

// WriteJSON encodes v and overwrites key.
func WriteJSON(ctx context.Context, store Store, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, payload)
}
