package props

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-props/pkg/activity"
)

// Registry isolates a property table across nested scopes and concurrently
// running paths. Every table operation resolves the calling path's nearest
// live scope and acts on that scope's snapshot only.
//
// EnterScope and ExitScope must be paired on the same path. A missing
// ExitScope leaves the path one level too deep and an extra one is handled by
// the configured UnderflowPolicy; neither is detected otherwise.
type Registry struct {
	cfg      registryConfig
	anchor   *Anchor
	bindings *bindingTable
	emitter  *activity.Emitter

	entered  atomic.Int64
	exited   atomic.Int64
	forked   atomic.Int64
	released atomic.Int64

	evalMu sync.Mutex
}

// Stats summarises registry activity.
type Stats struct {
	Paths    int   `json:"paths"`
	Entered  int64 `json:"entered"`
	Exited   int64 `json:"exited"`
	Forked   int64 `json:"forked"`
	Released int64 `json:"released"`
}

// ReleaseFunc drops a forked path's binding. It is safe to call more than
// once.
type ReleaseFunc func()

// New constructs a Registry. Without WithAnchor the registry is seeded from
// the process environment captured by Intercept.
func New(opts ...Option) *Registry {
	cfg := applyOptions(opts)
	return &Registry{
		cfg:      cfg,
		anchor:   cfg.anchor,
		bindings: newBindingTable(),
		emitter:  activity.NewEmitter(cfg.activityChannel, cfg.activityHooks...),
	}
}

// Anchor returns the table the registry was seeded from.
func (r *Registry) Anchor() *Anchor {
	if r == nil {
		return nil
	}
	return r.anchor
}

// UnderflowPolicy reports the configured underflow policy.
func (r *Registry) UnderflowPolicy() UnderflowPolicy {
	return r.cfg.underflow
}

// EnterScope opens a new scope on the calling path. The scope starts as a
// copy of what the path currently sees and stays isolated until ExitScope.
func (r *Registry) EnterScope(ctx context.Context, opts ...ScopeOption) Scope {
	path := pathOf(ctx)
	node := r.bindings.enter(path, r.anchor, applyScopeOptions(opts), r.cfg.clock())
	r.entered.Add(1)

	scope := node.describe(path)
	r.cfg.scopeLogger.LogScope(ScopeEvent{
		Action:  ActionEnter,
		Path:    path,
		ScopeID: node.id,
		Label:   node.label,
		Kind:    node.kind,
		Depth:   node.depth,
	})
	r.emit(ctx, activity.BuildScopeEnteredEvent(scopeEventInput(scope, node)))
	return scope
}

// ExitScope closes the calling path's innermost scope and returns the path to
// the directly enclosing scope. Everything written inside the closed scope
// becomes unreachable.
func (r *Registry) ExitScope(ctx context.Context) error {
	path := pathOf(ctx)
	clamp := r.cfg.underflow == UnderflowClamp
	node, clamped, err := r.bindings.exit(path, r.anchor, clamp, r.cfg.clock())
	if err != nil || clamped {
		r.cfg.scopeLogger.LogScope(ScopeEvent{
			Action:  ActionUnderflow,
			Path:    path,
			ScopeID: node.id,
			Kind:    node.kind,
			Depth:   node.depth,
			Clamped: clamped,
			Err:     err,
		})
		if err != nil {
			return &ScopeError{Op: "exit", Path: path, Scope: node.id, Err: err}
		}
		return nil
	}
	r.exited.Add(1)

	scope := node.describe(path)
	r.cfg.scopeLogger.LogScope(ScopeEvent{
		Action:  ActionExit,
		Path:    path,
		ScopeID: node.id,
		Label:   node.label,
		Kind:    node.kind,
		Depth:   node.depth,
	})
	r.emit(ctx, activity.BuildScopeExitedEvent(scopeEventInput(scope, node)))
	return nil
}

// WithScope runs fn inside a fresh scope and exits it when fn returns.
func (r *Registry) WithScope(ctx context.Context, fn func(context.Context) error, opts ...ScopeOption) (err error) {
	r.EnterScope(ctx, opts...)
	defer func() {
		if exitErr := r.ExitScope(ctx); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
	}()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// CurrentScope describes the calling path's current node.
func (r *Registry) CurrentScope(ctx context.Context) Scope {
	path := pathOf(ctx)
	return r.bindings.current(path, r.anchor, r.cfg.clock()).describe(path)
}

// Depth returns the nesting depth of the calling path's current node; a path
// that never entered a scope or forked has depth zero.
func (r *Registry) Depth(ctx context.Context) int {
	return r.bindings.current(pathOf(ctx), r.anchor, r.cfg.clock()).depth
}

// Fork binds a new path to a copy of what ctx's path sees right now and
// returns a context carrying it. Writes made on either side afterwards are
// never visible to the other. Call the ReleaseFunc when the path ends.
func (r *Registry) Fork(ctx context.Context, opts ...ScopeOption) (context.Context, ReleaseFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent := pathOf(ctx)
	child := NewPathID()
	node := r.bindings.fork(parent, child, r.anchor, applyScopeOptions(opts), r.cfg.clock())
	r.forked.Add(1)

	scope := node.describe(child)
	r.cfg.scopeLogger.LogScope(ScopeEvent{
		Action:  ActionFork,
		Path:    child,
		Parent:  parent,
		ScopeID: node.id,
		Label:   node.label,
		Kind:    node.kind,
		Depth:   node.depth,
	})
	input := scopeEventInput(scope, node)
	input.ParentPath = string(parent)
	r.emit(ctx, activity.BuildScopeForkedEvent(input))

	childCtx := ContextWithPath(ctx, child)
	var once sync.Once
	return childCtx, func() {
		once.Do(func() { r.release(childCtx, child) })
	}
}

// Go runs fn on a new goroutine bound to a path forked from ctx. The fork
// happens before Go returns, so every write made before the call is visible
// to fn. The returned channel is closed once fn has returned and the path is
// released.
func (r *Registry) Go(ctx context.Context, fn func(context.Context), opts ...ScopeOption) <-chan struct{} {
	childCtx, release := r.Fork(ctx, opts...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer release()
		if fn != nil {
			fn(childCtx)
		}
	}()
	return done
}

// NewPath returns a context bound to a fresh path seeded from the anchor
// rather than from ctx's current view.
func (r *Registry) NewPath(ctx context.Context) context.Context {
	return ContextWithPath(ctx, NewPathID())
}

// Release drops the binding of ctx's path. A later operation on the same path
// starts again from the anchor.
func (r *Registry) Release(ctx context.Context) {
	r.release(ctx, pathOf(ctx))
}

func (r *Registry) release(ctx context.Context, path PathID) {
	node, ok := r.bindings.release(path)
	if !ok {
		return
	}
	r.released.Add(1)
	r.cfg.scopeLogger.LogScope(ScopeEvent{
		Action:  ActionRelease,
		Path:    path,
		ScopeID: node.id,
		Kind:    node.kind,
		Depth:   node.depth,
	})
	r.emit(ctx, activity.BuildPathReleasedEvent(scopeEventInput(node.describe(path), node)))
}

// Stats reports bound paths and lifecycle counters.
func (r *Registry) Stats() Stats {
	return Stats{
		Paths:    r.bindings.size(),
		Entered:  r.entered.Load(),
		Exited:   r.exited.Load(),
		Forked:   r.forked.Load(),
		Released: r.released.Load(),
	}
}

// Paths lists the paths that currently hold a binding, sorted.
func (r *Registry) Paths() []PathID {
	paths := r.bindings.paths()
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// resolve returns the live snapshot for ctx's path.
func (r *Registry) resolve(ctx context.Context) *Snapshot {
	return r.bindings.current(pathOf(ctx), r.anchor, r.cfg.clock()).resolveLive(r.anchor)
}
