// Package propstest ties scopes and forked paths to the lifetime of a test.
//
// Each helper registers a t.Cleanup that undoes what it set up, so a test or
// subtest can write to the table freely and leave no trace once it finishes:
//
//	func TestFeature(t *testing.T) {
//		ctx := propstest.Enter(t, registry, context.Background())
//		registry.Set(ctx, "feature.enabled", "true")
//		...
//	}
package propstest

import (
	"context"
	"testing"

	props "github.com/goliatone/go-props"
)

// Enter opens a scope on ctx's path labelled with the test name and exits it
// during cleanup. The returned context is ctx itself; it is returned so calls
// chain naturally.
func Enter(t testing.TB, r *props.Registry, ctx context.Context, opts ...props.ScopeOption) context.Context {
	t.Helper()
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]props.ScopeOption{props.WithScopeLabel(t.Name())}, opts...)
	r.EnterScope(ctx, opts...)
	t.Cleanup(func() {
		if err := r.ExitScope(ctx); err != nil {
			t.Errorf("propstest: exit scope for %s: %v", t.Name(), err)
		}
	})
	return ctx
}

// Fork binds a new path to a copy of ctx's view and releases it during
// cleanup. Use it when a test runs with t.Parallel and must not share a path
// with its siblings.
func Fork(t testing.TB, r *props.Registry, ctx context.Context, opts ...props.ScopeOption) context.Context {
	t.Helper()
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]props.ScopeOption{props.WithScopeLabel(t.Name())}, opts...)
	child, release := r.Fork(ctx, opts...)
	t.Cleanup(release)
	return child
}

// Isolate forks a path for the test and enters a scope on it, so the test
// starts from ctx's view and never writes back to it.
func Isolate(t testing.TB, r *props.Registry, ctx context.Context, opts ...props.ScopeOption) context.Context {
	t.Helper()
	child := Fork(t, r, ctx, opts...)
	return Enter(t, r, child, opts...)
}

// Set writes key=value on ctx's path and fails the test when it cannot.
func Set(t testing.TB, r *props.Registry, ctx context.Context, pairs ...string) {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("propstest: Set needs key/value pairs, got %d arguments", len(pairs))
	}
	for i := 0; i < len(pairs); i += 2 {
		r.Set(ctx, pairs[i], pairs[i+1])
	}
}
