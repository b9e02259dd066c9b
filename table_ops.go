package props

import "context"

// Table returns the live snapshot ctx's path currently resolves to. The
// reference stays valid after the owning scope exits, but writes through it
// are then invisible to every path.
func (r *Registry) Table(ctx context.Context) Table {
	return r.resolve(ctx)
}

func (r *Registry) Get(ctx context.Context, key string) (string, bool) {
	return r.resolve(ctx).Get(key)
}

func (r *Registry) GetOr(ctx context.Context, key, fallback string) string {
	return r.resolve(ctx).GetOr(key, fallback)
}

func (r *Registry) Has(ctx context.Context, key string) bool {
	return r.resolve(ctx).Has(key)
}

// Set writes key in the calling path's current scope and returns the value it
// replaced there.
func (r *Registry) Set(ctx context.Context, key, value string) (string, bool) {
	return r.resolve(ctx).Set(key, value)
}

// Remove deletes key from the calling path's current scope only.
func (r *Registry) Remove(ctx context.Context, key string) (string, bool) {
	return r.resolve(ctx).Remove(key)
}

func (r *Registry) Clear(ctx context.Context) {
	r.resolve(ctx).Clear()
}

func (r *Registry) Len(ctx context.Context) int {
	return r.resolve(ctx).Len()
}

func (r *Registry) Keys(ctx context.Context) []string {
	return r.resolve(ctx).Keys()
}

func (r *Registry) Entries(ctx context.Context) []Entry {
	return r.resolve(ctx).Entries()
}

func (r *Registry) PutAll(ctx context.Context, values map[string]string) {
	r.resolve(ctx).PutAll(values)
}

// Replace swaps the whole visible table of the current scope for values.
func (r *Registry) Replace(ctx context.Context, values map[string]string) {
	r.resolve(ctx).Replace(values)
}

// Map returns a detached copy of the visible table.
func (r *Registry) Map(ctx context.Context) map[string]string {
	return r.resolve(ctx).Map()
}
