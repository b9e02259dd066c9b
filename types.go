package props

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-props/pkg/activity"
)

// UnderflowPolicy decides what ExitScope does on a path with no entered scope.
type UnderflowPolicy string

const (
	// UnderflowReject returns an error wrapping ErrScopeUnderflow and leaves
	// the path where it is.
	UnderflowReject UnderflowPolicy = "reject"
	// UnderflowClamp turns the call into a logged no-op.
	UnderflowClamp UnderflowPolicy = "clamp"
)

// ParseUnderflowPolicy converts a string into an UnderflowPolicy.
func ParseUnderflowPolicy(value string) (UnderflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(UnderflowReject):
		return UnderflowReject, nil
	case string(UnderflowClamp):
		return UnderflowClamp, nil
	default:
		return "", fmt.Errorf("props: unknown underflow policy %q", value)
	}
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Scope    Scope
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) scopeLabel() string {
	if ctx.Scope.Label != "" {
		return ctx.Scope.Label
	}
	if ctx.Scope.ID != "" {
		return string(ctx.Scope.Kind) + ":" + ctx.Scope.ID
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// Option configures a Registry.
type Option func(*registryConfig)

type registryConfig struct {
	anchor          *Anchor
	underflow       UnderflowPolicy
	scopeLogger     ScopeLogger
	evalLogger      EvaluatorLogger
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	activityHooks   activity.Hooks
	activityChannel string
	clock           func() time.Time
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.anchor == nil {
		cfg.anchor = Intercept()
	}
	if policy, err := ParseUnderflowPolicy(string(cfg.underflow)); err == nil {
		cfg.underflow = policy
	} else {
		cfg.underflow = UnderflowReject
	}
	if cfg.scopeLogger == nil {
		cfg.scopeLogger = noopLogger{}
	}
	if cfg.evalLogger == nil {
		cfg.evalLogger = noopLogger{}
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	return cfg
}

// WithAnchor seeds the registry from values instead of the process
// environment. A nil map yields an empty anchor.
func WithAnchor(values map[string]string) Option {
	anchor := AnchorFromMap(values)
	return func(cfg *registryConfig) {
		cfg.anchor = anchor
	}
}

// WithAnchorEntries seeds the registry from entries, keeping their order.
func WithAnchorEntries(entries ...Entry) Option {
	anchor := NewAnchor(entries...)
	return func(cfg *registryConfig) {
		cfg.anchor = anchor
	}
}

// WithEnvironAnchor seeds the registry from a fresh capture of the process
// environment rather than the shared Intercept anchor.
func WithEnvironAnchor() Option {
	return func(cfg *registryConfig) {
		cfg.anchor = EnvironAnchor()
	}
}

// WithUnderflowPolicy selects how excess ExitScope calls are handled. The
// value is matched like ParseUnderflowPolicy; anything it rejects falls back
// to UnderflowReject, so parse untrusted input first to surface the error.
func WithUnderflowPolicy(policy UnderflowPolicy) Option {
	return func(cfg *registryConfig) {
		cfg.underflow = policy
	}
}

// WithEvaluator configures the rule evaluator. The expr evaluator is used
// when none is configured.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *registryConfig) {
		cfg.evaluator = e
	}
}

// WithClock overrides the time source used for scope timestamps.
func WithClock(clock func() time.Time) Option {
	return func(cfg *registryConfig) {
		cfg.clock = clock
	}
}
