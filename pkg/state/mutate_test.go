package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-props/pkg/state"
)

type mutateStore[T any] struct {
	loadValue T
	loadMeta  state.Meta
	loadOK    bool
	loadErr   error

	saveCalls  int
	savedMeta  state.Meta
	savedValue T
	saveReturn state.Meta
	saveErr    error
}

func (s *mutateStore[T]) Load(_ context.Context, _ state.Ref) (T, state.Meta, bool, error) {
	var zero T
	if s.loadErr != nil {
		return zero, state.Meta{}, false, s.loadErr
	}
	return s.loadValue, s.loadMeta, s.loadOK, nil
}

func (s *mutateStore[T]) Save(_ context.Context, _ state.Ref, value T, meta state.Meta) (state.Meta, error) {
	s.saveCalls++
	s.savedMeta = meta
	s.savedValue = value
	if s.saveErr != nil {
		return state.Meta{}, s.saveErr
	}
	return s.saveReturn, nil
}

func (s *mutateStore[T]) Delete(context.Context, state.Ref) (bool, error) {
	return false, nil
}

type checkpoint struct {
	Name string
}

func (c checkpoint) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestMutateValidationFailureDoesNotSave(t *testing.T) {
	store := &mutateStore[checkpoint]{
		loadValue: checkpoint{Name: "ok"},
		loadMeta:  state.Meta{SnapshotID: "snap-1", ETag: "v1"},
		loadOK:    true,
	}

	_, _, err := state.Mutate[checkpoint](context.Background(), store, state.Ref{Name: "c"}, state.Meta{}, func(c *checkpoint) error {
		c.Name = ""
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 0, store.saveCalls)
}

func TestMutateETagMismatch(t *testing.T) {
	store := &mutateStore[checkpoint]{
		loadValue: checkpoint{Name: "ok"},
		loadMeta:  state.Meta{ETag: "v2"},
		loadOK:    true,
	}

	_, meta, err := state.Mutate[checkpoint](context.Background(), store, state.Ref{Name: "c"}, state.Meta{ETag: "v1"}, func(*checkpoint) error {
		return nil
	})
	assert.ErrorIs(t, err, state.ErrETagMismatch)
	assert.Equal(t, "v2", meta.ETag)
	assert.Equal(t, 0, store.saveCalls)
}

func TestMutateMergesMetaAndSaves(t *testing.T) {
	store := &mutateStore[checkpoint]{
		loadValue:  checkpoint{Name: "before"},
		loadMeta:   state.Meta{SnapshotID: "snap-1", ETag: "v1", Path: "main"},
		loadOK:     true,
		saveReturn: state.Meta{SnapshotID: "snap-2", ETag: "v2"},
	}

	value, meta, err := state.Mutate[checkpoint](context.Background(), store, state.Ref{Name: "c"}, state.Meta{SnapshotID: "snap-2"}, func(c *checkpoint) error {
		c.Name = "after"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, checkpoint{Name: "after"}, value)
	assert.Equal(t, "v2", meta.ETag)
	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "snap-2", store.savedMeta.SnapshotID)
	assert.Equal(t, "main", store.savedMeta.Path)
	assert.Equal(t, "v1", store.savedMeta.ETag)
}

func TestMutateStartsFromZeroWhenMissing(t *testing.T) {
	store := state.NewMemoryStore[[]pair]()
	value, meta, err := state.Mutate[[]pair](context.Background(), store, state.Ref{Name: "fresh"}, state.Meta{}, func(v *[]pair) error {
		assert.Empty(t, *v)
		*v = append(*v, pair{Key: "k", Value: "v"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []pair{{Key: "k", Value: "v"}}, value)
	assert.NotEmpty(t, meta.ETag)
}

func TestMutatePropagatesLoadErrors(t *testing.T) {
	boom := errors.New("boom")
	store := &mutateStore[checkpoint]{loadErr: boom}
	_, _, err := state.Mutate[checkpoint](context.Background(), store, state.Ref{Name: "c"}, state.Meta{}, func(*checkpoint) error {
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMutateRequiresMutator(t *testing.T) {
	store := state.NewMemoryStore[[]pair]()
	_, _, err := state.Mutate[[]pair](context.Background(), store, state.Ref{Name: "c"}, state.Meta{}, nil)
	require.Error(t, err)
}
