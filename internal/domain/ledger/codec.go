package ledger

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/talkboard/progress-engine/internal/domain/shared"
)

// ReadJSON loads the JSON value under key into a T.
// An absent key yields def with no error. A store failure yields def and an
// error matching shared.ErrStorage; an unparseable value yields def and an
// error matching shared.ErrCorruptValue.
func ReadJSON[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return def, shared.WrapError("ledger", "Read", shared.ErrStorage, "get "+key, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return def, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, shared.WrapError("ledger", "Read", shared.ErrCorruptValue, "decode "+key, err)
	}
	return v, nil
}

// WriteJSON stores v as JSON under key.
func WriteJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return shared.WrapError("ledger", "Write", shared.ErrInvalidInput, "encode "+key, err)
	}
	if err := s.Set(ctx, key, string(data)); err != nil {
		return shared.WrapError("ledger", "Write", shared.ErrStorage, "set "+key, err)
	}
	return nil
}

// ReadInt loads a plain integer value. Absent keys yield 0.
func ReadInt(ctx context.Context, s Store, key string) (int, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return 0, shared.WrapError("ledger", "ReadInt", shared.ErrStorage, "get "+key, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, shared.WrapError("ledger", "ReadInt", shared.ErrCorruptValue, "decode "+key, err)
	}
	return n, nil
}

// WriteInt stores a plain integer value.
func WriteInt(ctx context.Context, s Store, key string, n int) error {
	if err := s.Set(ctx, key, strconv.Itoa(n)); err != nil {
		return shared.WrapError("ledger", "WriteInt", shared.ErrStorage, "set "+key, err)
	}
	return nil
}

// ReadString loads a raw string value. Absent keys yield "".
func ReadString(ctx context.Context, s Store, key string) (string, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return "", shared.WrapError("ledger", "ReadString", shared.ErrStorage, "get "+key, err)
	}
	if !found {
		return "", nil
	}
	return raw, nil
}

// WriteString stores a raw string value.
func WriteString(ctx context.Context, s Store, key, value string) error {
	if err := s.Set(ctx, key, value); err != nil {
		return shared.WrapError("ledger", "WriteString", shared.ErrStorage, "set "+key, err)
	}
	return nil
}

// Remove deletes keys, wrapping failures as storage errors.
func Remove(ctx context.Context, s Store, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.Remove(ctx, keys...); err != nil {
		return shared.WrapError("ledger", "Remove", shared.ErrStorage, "remove keys", err)
	}
	return nil
}
