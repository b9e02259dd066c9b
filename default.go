package props

import (
	"context"
	"io"
	"sync"
)

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use from
// the anchor captured by Intercept.
func Default() *Registry {
	defaultMu.RLock()
	r := defaultRegistry
	defaultMu.RUnlock()
	if r != nil {
		return r
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = New()
	}
	return defaultRegistry
}

// SetDefault replaces the process-wide registry and returns the previous one.
func SetDefault(r *Registry) (*Registry, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	previous := defaultRegistry
	defaultRegistry = r
	return previous, nil
}

// EnterScope opens a scope on the default registry.
func EnterScope(ctx context.Context, opts ...ScopeOption) Scope {
	return Default().EnterScope(ctx, opts...)
}

// ExitScope closes a scope on the default registry.
func ExitScope(ctx context.Context) error {
	return Default().ExitScope(ctx)
}

// WithScope runs fn inside a scope of the default registry.
func WithScope(ctx context.Context, fn func(context.Context) error, opts ...ScopeOption) error {
	return Default().WithScope(ctx, fn, opts...)
}

// Fork forks a path on the default registry.
func Fork(ctx context.Context, opts ...ScopeOption) (context.Context, ReleaseFunc) {
	return Default().Fork(ctx, opts...)
}

// Go runs fn on a forked path of the default registry.
func Go(ctx context.Context, fn func(context.Context), opts ...ScopeOption) <-chan struct{} {
	return Default().Go(ctx, fn, opts...)
}

func Get(ctx context.Context, key string) (string, bool) {
	return Default().Get(ctx, key)
}

func GetOr(ctx context.Context, key, fallback string) string {
	return Default().GetOr(ctx, key, fallback)
}

func Has(ctx context.Context, key string) bool {
	return Default().Has(ctx, key)
}

func Set(ctx context.Context, key, value string) (string, bool) {
	return Default().Set(ctx, key, value)
}

func Remove(ctx context.Context, key string) (string, bool) {
	return Default().Remove(ctx, key)
}

func Keys(ctx context.Context) []string {
	return Default().Keys(ctx)
}

func Clear(ctx context.Context) {
	Default().Clear(ctx)
}

func Load(ctx context.Context, src io.Reader) error {
	return Default().Load(ctx, src)
}

func Store(ctx context.Context, dst io.Writer, comment string) error {
	return Default().Store(ctx, dst, comment)
}
