package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	farm "github.com/dgryski/go-farm"
	"github.com/shamaton/msgpack/v2"
)

// MemoryStore is an in-memory Store. Values are kept msgpack-encoded, so a
// loaded value never aliases a saved one, and each record's ETag is the farm
// hash of its encoded value.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string][]byte
	now     func() time.Time
}

type memoryRecord[T any] struct {
	Value T    `msgpack:"value"`
	Meta  Meta `msgpack:"meta"`
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string][]byte{}, now: time.Now}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	var record memoryRecord[T]
	if err := msgpack.Unmarshal(raw, &record); err != nil {
		return zero, Meta{}, false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return record.Value, cloneMeta(record.Meta), true, nil
}

// Save stores value under ref. When meta.ETag is set it must match the
// stored record's ETag. The returned Meta carries the new ETag.
func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, value T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	encodedValue, err := msgpack.Marshal(value)
	if err != nil {
		return Meta{}, fmt.Errorf("state: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.ETag != "" {
		current, err := s.etagLocked(key)
		if err != nil {
			return Meta{}, err
		}
		if current != "" && current != meta.ETag {
			return Meta{}, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, current)
		}
	}

	saved := cloneMeta(meta)
	saved.ETag = ETag(encodedValue)
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = s.now().UTC()
	}
	raw, err := msgpack.Marshal(memoryRecord[T]{Value: value, Meta: saved})
	if err != nil {
		return Meta{}, fmt.Errorf("state: encode %q: %w", key, err)
	}
	s.records[key] = raw
	return cloneMeta(saved), nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, ref Ref) (bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	delete(s.records, key)
	return ok, nil
}

// Keys lists stored identifiers in sorted order.
func (s *MemoryStore[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore[T]) etagLocked(key string) (string, error) {
	raw, ok := s.records[key]
	if !ok {
		return "", nil
	}
	var record memoryRecord[T]
	if err := msgpack.Unmarshal(raw, &record); err != nil {
		return "", fmt.Errorf("state: decode %q: %w", key, err)
	}
	return record.Meta.ETag, nil
}

// ETag fingerprints an encoded value.
func ETag(encoded []byte) string {
	return fmt.Sprintf("%016x", farm.Hash64(encoded))
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
