package props

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group runs functions on forked paths and collects the first error, in the
// manner of errgroup.Group. Every Go call forks from the path of the context
// Group was created with, at the moment of the call.
type Group struct {
	registry *Registry
	ctx      context.Context
	group    *errgroup.Group
}

// Group returns a Group whose goroutines fork from ctx's path. The returned
// context is cancelled when a function fails or Wait returns.
func (r *Registry) Group(ctx context.Context) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	return &Group{registry: r, ctx: groupCtx, group: group}, groupCtx
}

// SetLimit caps the number of active goroutines; see errgroup.Group.SetLimit.
func (g *Group) SetLimit(n int) {
	g.group.SetLimit(n)
}

// Go forks a path and runs fn on it in a new goroutine. The path is released
// when fn returns.
func (g *Group) Go(fn func(ctx context.Context) error, opts ...ScopeOption) {
	childCtx, release := g.registry.Fork(g.ctx, opts...)
	g.group.Go(func() error {
		defer release()
		return fn(childCtx)
	})
}

// Wait blocks until every function has returned and reports the first error.
func (g *Group) Wait() error {
	return g.group.Wait()
}
