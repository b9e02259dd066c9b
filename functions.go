package props

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a Go function callable from rules.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the functions rules may call. Names are
// case-insensitive identifiers and are stored lowercased.
type FunctionRegistry struct {
	mu  sync.RWMutex
	fns map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{fns: map[string]Function{}}
}

// Register adds fn under name. The name must be an identifier other than
// call and must not be taken.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case fn == nil:
		return fmt.Errorf("%w: %q is nil", ErrInvalidFunction, name)
	case !identifierPattern.MatchString(key):
		return fmt.Errorf("%w: %q is not an identifier", ErrInvalidFunction, name)
	case key == callFunction:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidFunction, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fns == nil {
		r.fns = map[string]Function{}
	}
	if _, taken := r.fns[key]; taken {
		return fmt.Errorf("%w: %q", ErrFunctionExists, name)
	}
	r.fns[key] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[strings.ToLower(name)]
	return fn, ok
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Names lists the registered names in order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clone copies the registry; later registrations on either side stay local.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{fns: make(map[string]Function, len(r.fns))}
	for name, fn := range r.fns {
		clone.fns[name] = fn
	}
	return clone
}

// WithFunctionRegistry makes the functions of registry callable from rules
// run by the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *registryConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

// WithCustomFunction registers fn under name for the default evaluator.
// Registrations Register would reject are skipped.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *registryConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
