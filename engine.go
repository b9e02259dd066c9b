package props

import (
	"fmt"
	"regexp"
)

// ProgramCache stores compiled programs. Keys are prefixed with the engine
// name, so one cache can serve several evaluators.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *registryConfig) {
		cfg.programCache = cache
	}
}

// EngineOption configures an expr, cel or js evaluator.
type EngineOption func(*engine)

// WithEngineCache stores compiled programs in cache.
func WithEngineCache(cache ProgramCache) EngineOption {
	return func(e *engine) {
		e.cache = cache
	}
}

// WithEngineFunctions makes the functions of registry callable from rules,
// directly by name and through call(name, ...).
func WithEngineFunctions(registry *FunctionRegistry) EngineOption {
	return func(e *engine) {
		if registry != nil {
			e.functions = registry.Clone()
		}
	}
}

// engine is the part every evaluator shares.
type engine struct {
	name      string
	cache     ProgramCache
	functions *FunctionRegistry
}

func newEngine(name string, opts []EngineOption) engine {
	e := engine{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	return e
}

// fail wraps err with the engine name and the rule it was evaluating.
func (e engine) fail(expression string, rule RuleContext, err error) error {
	return evaluationError(e.name, expression, rule.Scope.Path, rule.scopeLabel(), err)
}

// failCompile wraps an error raised before any rule context is known.
func (e engine) failCompile(expression string, err error) error {
	return evaluationError(e.name, expression, "", "", err)
}

// call dispatches call(name, args...) from a rule.
func (e engine) call(name string, args ...any) (any, error) {
	if e.functions == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return e.functions.Call(name, args...)
}

// callables binds call and every registered function for engines that take
// Go functions as plain variables.
func (e engine) callables() map[string]any {
	if e.functions == nil {
		return nil
	}
	out := map[string]any{callFunction: e.call}
	for _, name := range e.functions.Names() {
		fn, _ := e.functions.Lookup(name)
		out[name] = func(args ...any) (any, error) { return fn(args...) }
	}
	return out
}

// cachedProgram returns the program stored under key, building and storing
// it on a miss or when the cached value has another type.
func cachedProgram[P any](e engine, key string, build func() (P, error)) (P, error) {
	key = e.name + ":" + key
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := build()
	if err != nil {
		return program, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// ruleFunc adapts a closure over a compiled program to CompiledRule.
type ruleFunc func(RuleContext) (any, error)

func (f ruleFunc) Evaluate(rule RuleContext) (any, error) {
	return f(rule)
}

// callFunction is the name of the dynamic dispatch function bound in rules.
const callFunction = "call"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
