package props

import (
	"context"
	"fmt"

	"github.com/goliatone/go-props/pkg/state"
)

// CheckpointStore persists views saved with Checkpoint.
type CheckpointStore = state.Store[[]Entry]

// NewMemoryCheckpointStore returns an in-memory CheckpointStore.
func NewMemoryCheckpointStore() *state.MemoryStore[[]Entry] {
	return state.NewMemoryStore[[]Entry]()
}

// Checkpoint saves the table visible to ctx's path under ref, overwriting
// whatever was saved there.
func (r *Registry) Checkpoint(ctx context.Context, store CheckpointStore, ref state.Ref) (state.Meta, error) {
	return r.CheckpointIfMatch(ctx, store, ref, "")
}

// CheckpointIfMatch is Checkpoint guarded by the ETag of the record it
// replaces. A stale etag fails with state.ErrETagMismatch; an empty etag
// matches anything.
func (r *Registry) CheckpointIfMatch(ctx context.Context, store CheckpointStore, ref state.Ref, etag string) (state.Meta, error) {
	if store == nil {
		return state.Meta{}, fmt.Errorf("props: checkpoint store is required")
	}
	path := pathOf(ctx)
	node := r.bindings.current(path, r.anchor, r.cfg.clock())
	snapshot := node.resolveLive(r.anchor)
	_, meta, err := state.Mutate(ctx, store, ref, state.Meta{
		SnapshotID: snapshot.ID(),
		ScopeID:    node.id,
		Path:       string(path),
		ETag:       etag,
		UpdatedAt:  r.cfg.clock().UTC(),
	}, func(saved *[]Entry) error {
		*saved = snapshot.Entries()
		return nil
	})
	if err != nil {
		return state.Meta{}, &ScopeError{Op: "checkpoint", Path: path, Scope: node.id, Err: err}
	}
	return meta, nil
}

// Restore replaces the table visible to ctx's path with the view saved under
// ref. It reports false when nothing was saved there; the view is left
// unchanged in that case.
func (r *Registry) Restore(ctx context.Context, store CheckpointStore, ref state.Ref) (state.Meta, bool, error) {
	if store == nil {
		return state.Meta{}, false, fmt.Errorf("props: checkpoint store is required")
	}
	path := pathOf(ctx)
	entries, meta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return state.Meta{}, false, &ScopeError{Op: "restore", Path: path, Err: err}
	}
	if !ok {
		return state.Meta{}, false, nil
	}
	r.resolve(ctx).Reset(entries...)
	return meta, true, nil
}
