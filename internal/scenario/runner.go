package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"

	props "github.com/goliatone/go-props"
)

// Failure is one unmet expectation.
type Failure struct {
	Step    string `json:"step"`
	Op      Op     `json:"op"`
	Message string `json:"message"`
}

// Report summarises a run.
type Report struct {
	Name     string      `json:"name"`
	Steps    int         `json:"steps"`
	Failures []Failure   `json:"failures,omitempty"`
	Stats    props.Stats `json:"stats"`
}

// Passed reports whether every expectation held.
func (r Report) Passed() bool {
	return len(r.Failures) == 0
}

// NewRegistry builds the registry a scenario runs against.
func NewRegistry(s *Scenario, opts ...props.Option) (*props.Registry, error) {
	policy, err := props.ParseUnderflowPolicy(s.Underflow)
	if err != nil {
		return nil, err
	}
	base := []props.Option{
		props.WithAnchor(s.Anchor),
		props.WithUnderflowPolicy(policy),
	}
	return props.New(append(base, opts...)...), nil
}

// Run executes s on a fresh path of r and releases it before reporting.
// Unmet expectations are collected in the report; the error is reserved for
// steps that could not run.
func Run(ctx context.Context, r *props.Registry, s *Scenario) (Report, error) {
	if r == nil {
		return Report{}, props.ErrNilRegistry
	}
	if err := s.Validate(); err != nil {
		return Report{}, err
	}
	run := &runner{registry: r}
	pathCtx := r.NewPath(ctx)
	err := run.steps(pathCtx, s.Steps, "")
	r.Release(pathCtx)
	return Report{
		Name:     s.Name,
		Steps:    run.count,
		Failures: run.failures,
		Stats:    r.Stats(),
	}, err
}

type runner struct {
	registry *props.Registry

	mu       sync.Mutex
	count    int
	failures []Failure
}

func (run *runner) steps(ctx context.Context, steps []Step, prefix string) error {
	for i, step := range steps {
		at := stepLabel(prefix, i)
		if err := run.step(ctx, step, at); err != nil {
			return fmt.Errorf("scenario: step %s (%s): %w", at, step.Op, err)
		}
	}
	return nil
}

func (run *runner) step(ctx context.Context, step Step, at string) error {
	run.mu.Lock()
	run.count++
	run.mu.Unlock()

	r := run.registry
	switch step.Op {
	case OpEnter:
		r.EnterScope(ctx, props.WithScopeLabel(step.Label))
	case OpExit:
		err := r.ExitScope(ctx)
		switch {
		case step.Error && err == nil:
			run.fail(at, step.Op, "expected exit to fail")
		case !step.Error && err != nil:
			if errors.Is(err, props.ErrScopeUnderflow) {
				run.fail(at, step.Op, err.Error())
				return nil
			}
			return err
		}
	case OpSet:
		r.Set(ctx, step.Key, step.Value)
	case OpRemove:
		r.Remove(ctx, step.Key)
	case OpClear:
		r.Clear(ctx)
	case OpLoad:
		return r.LoadString(ctx, step.Text)
	case OpExpect:
		value, ok := r.Get(ctx, step.Key)
		switch {
		case step.Absent && ok:
			run.fail(at, step.Op, fmt.Sprintf("expected %q to be absent, got %q", step.Key, value))
		case !step.Absent && !ok:
			run.fail(at, step.Op, fmt.Sprintf("expected %q=%q, key is absent", step.Key, step.Value))
		case !step.Absent && value != step.Value:
			run.fail(at, step.Op, fmt.Sprintf("expected %q=%q, got %q", step.Key, step.Value, value))
		}
	case OpDepth:
		if depth := r.Depth(ctx); depth != step.Depth {
			run.fail(at, step.Op, fmt.Sprintf("expected depth %d, got %d", step.Depth, depth))
		}
	case OpEval:
		result, err := r.Evaluate(ctx, step.Expr)
		if err != nil {
			run.fail(at, step.Op, err.Error())
			return nil
		}
		if got := fmt.Sprint(result.Value); got != step.Value {
			run.fail(at, step.Op, fmt.Sprintf("expected %q to yield %q, got %q", step.Expr, step.Value, got))
		}
	case OpFork:
		var err error
		done := r.Go(ctx, func(child context.Context) {
			err = run.steps(child, step.Steps, at)
		}, props.WithScopeLabel(step.Label))
		<-done
		return err
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func (run *runner) fail(at string, op Op, message string) {
	run.mu.Lock()
	defer run.mu.Unlock()
	run.failures = append(run.failures, Failure{Step: at, Op: op, Message: message})
}
