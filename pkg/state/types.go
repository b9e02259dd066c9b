package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

var ErrInvalidRef = errors.New("state: invalid ref")

// Ref identifies one checkpoint.
type Ref struct {
	Namespace string `json:"namespace,omitempty" msgpack:"namespace"`
	Name      string `json:"name" msgpack:"name"`
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty" msgpack:"snapshot_id"`
	ScopeID    string            `json:"scope_id,omitempty" msgpack:"scope_id"`
	Path       string            `json:"path,omitempty" msgpack:"path"`
	ETag       string            `json:"etag,omitempty" msgpack:"etag"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty" msgpack:"updated_at"`
	Extra      map[string]string `json:"extra,omitempty" msgpack:"extra"`
}

// Store loads/saves one value for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (value T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, value T, meta Meta) (Meta, error)
	Delete(ctx context.Context, ref Ref) (bool, error)
}

type Mutator[T any] func(*T) error

// DefaultNamespace is used by refs that leave Namespace empty.
const DefaultNamespace = "default"

// Identifier returns the canonical storage key, namespace/name.
func (r Ref) Identifier() (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidRef)
	}
	namespace := strings.TrimSpace(r.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if strings.Contains(namespace, "/") {
		return "", fmt.Errorf("%w: namespace %q must not contain '/'", ErrInvalidRef, r.Namespace)
	}
	return namespace + "/" + name, nil
}

// Mutate loads one value, applies fn, validates the result when it
// implements Validate() error, then saves it. A non-empty meta.ETag must
// match the stored one.
func Mutate[T any](ctx context.Context, store Store[T], ref Ref, meta Meta, fn Mutator[T]) (T, Meta, error) {
	var zero T
	if store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return zero, Meta{}, err
	}
	if fn == nil {
		return zero, Meta{}, fmt.Errorf("state: mutator is required")
	}

	value, loadedMeta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %q: %w", ref.Name, err)
	}
	if !ok {
		value = zero
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return zero, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&value); err != nil {
		return zero, loadedMeta, err
	}
	if v, ok := any(value).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return zero, loadedMeta, err
		}
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	savedMeta, err := store.Save(ctx, ref, value, saveMeta)
	if err != nil {
		return zero, loadedMeta, fmt.Errorf("state: save %q: %w", ref.Name, err)
	}
	return value, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ScopeID != "" {
		out.ScopeID = override.ScopeID
	}
	if override.Path != "" {
		out.Path = override.Path
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
