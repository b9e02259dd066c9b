package props

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Evaluate runs expr against the table visible to ctx's path. Every visible
// key is bound as a variable when it is a valid identifier, and the whole
// table is available as props["key"].
func (r *Registry) Evaluate(ctx context.Context, expr string) (Response[any], error) {
	return r.EvaluateWith(ctx, RuleContext{}, expr)
}

// EvaluateWith runs expr using rule, filling Snapshot and Scope from ctx's
// path when they are unset.
func (r *Registry) EvaluateWith(ctx context.Context, rule RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, ErrEmptyExpression
	}
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	rule = r.ruleContext(ctx, rule)
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(rule, expr)
	duration := time.Since(start)
	path := pathOf(ctx)
	evalErr = evaluationError(engine, expr, path, rule.scopeLabel(), evalErr)
	r.cfg.evalLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Path:     path,
		Scope:    rule.scopeLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

// Compile prepares expr with the configured evaluator. Run the result with
// RuleFor to evaluate it against a path's current view.
func (r *Registry) Compile(expr string, opts ...CompileOption) (CompiledRule, error) {
	evaluator, err := r.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	return evaluator.Compile(expr, opts...)
}

// RuleFor builds the rule context describing ctx's path.
func (r *Registry) RuleFor(ctx context.Context) RuleContext {
	return r.ruleContext(ctx, RuleContext{})
}

func (r *Registry) ruleContext(ctx context.Context, rule RuleContext) RuleContext {
	if rule.Snapshot == nil {
		view := r.resolve(ctx).Map()
		snapshot := make(map[string]any, len(view))
		for key, value := range view {
			snapshot[key] = value
		}
		rule.Snapshot = snapshot
	}
	if rule.Scope.isZero() {
		rule.Scope = r.CurrentScope(ctx)
	}
	if rule.Now == nil {
		now := r.cfg.clock()
		rule.Now = &now
	}
	return rule.withDefaults()
}

func (r *Registry) resolveEvaluator() (Evaluator, error) {
	r.evalMu.Lock()
	defer r.evalMu.Unlock()
	if r.cfg.evaluator != nil {
		return r.cfg.evaluator, nil
	}
	r.cfg.evaluator = NewExprEvaluator(
		WithEngineCache(r.cfg.programCache),
		WithEngineFunctions(r.cfg.functions),
	)
	return r.cfg.evaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEvaluatorAvailable() && isJSEvaluator(e) {
			return "js"
		}
		return "custom"
	}
}

// tableVariable is the name under which the whole visible table is bound.
const tableVariable = "props"

func ruleVariables(ctx RuleContext) map[string]any {
	vars := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	if binding := ctx.Scope.binding(); binding != nil {
		vars["scope"] = binding
	}
	for key, value := range ctx.Snapshot {
		if _, reserved := vars[key]; reserved || key == tableVariable {
			continue
		}
		vars[key] = value
	}
	vars[tableVariable] = ctx.Snapshot
	return vars
}

// NewEvaluatorByName returns the evaluator for engine: expr, cel or js. js
// is only available when built with the js_eval tag.
func NewEvaluatorByName(engine string, opts ...EngineOption) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "expr":
		return NewExprEvaluator(opts...), nil
	case "cel":
		return NewCELEvaluator(opts...), nil
	case "js":
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("props: js evaluator requires the js_eval build tag: %w", ErrNoEvaluator)
		}
		return NewJSEvaluator(opts...), nil
	default:
		return nil, fmt.Errorf("props: unknown evaluator engine %q: %w", engine, ErrNoEvaluator)
	}
}
