package props

import (
	"context"

	"github.com/goliatone/go-props/pkg/activity"
)

// WithActivityHooks attaches hooks notified on scope lifecycle transitions.
// Nil hooks are dropped.
func WithActivityHooks(hooks ...activity.Hook) Option {
	compact := activity.Hooks(hooks).Compact()
	return func(cfg *registryConfig) {
		cfg.activityHooks = compact
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *registryConfig) {
		cfg.activityChannel = channel
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (r *Registry) ActivityHooks() activity.Hooks {
	if r == nil {
		return nil
	}
	return r.cfg.activityHooks.Compact()
}

// emit forwards event to the hooks. Hook failures go to the scope logger and
// never interrupt the lifecycle call.
func (r *Registry) emit(ctx context.Context, event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.cfg.clock()
	}
	if err := r.emitter.Emit(ctx, event); err != nil {
		r.cfg.scopeLogger.LogScope(ScopeEvent{
			Action: ScopeAction(event.Verb),
			Path:   pathOf(ctx),
			Err:    err,
		})
	}
}

func scopeEventInput(scope Scope, node *scopeNode) activity.ScopeEventInput {
	input := activity.ScopeEventInput{
		Path:       string(scope.Path),
		ScopeID:    scope.ID,
		Kind:       string(scope.Kind),
		Label:      scope.Label,
		Depth:      scope.Depth,
		SnapshotID: scope.SnapshotID,
		Metadata:   copyMetadata(scope.Metadata),
	}
	if node != nil && node.parent != nil {
		input.ParentScopeID = node.parent.id
	}
	return input
}
