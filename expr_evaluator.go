package props

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprEvaluator struct {
	engine
}

// NewExprEvaluator returns an Evaluator backed by expr-lang/expr. Unknown
// identifiers evaluate to nil instead of failing compilation.
func NewExprEvaluator(opts ...EngineOption) Evaluator {
	return &exprEvaluator{engine: newEngine("expr", opts)}
}

func (e *exprEvaluator) Evaluate(rule RuleContext, expression string) (any, error) {
	compiled, err := e.Compile(expression)
	if err != nil {
		return nil, e.fail(expression, rule, err)
	}
	return compiled.Evaluate(rule)
}

func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, e.failCompile(expression, ErrEmptyExpression)
	}
	program, err := cachedProgram(e.engine, expression, func() (*exprvm.Program, error) {
		return exprlang.Compile(expression, e.options()...)
	})
	if err != nil {
		return nil, e.failCompile(expression, err)
	}
	return ruleFunc(func(rule RuleContext) (any, error) {
		out, err := exprlang.Run(program, ruleVariables(rule.withDefaults()))
		if err != nil {
			return nil, e.fail(expression, rule, err)
		}
		return out, nil
	}), nil
}

func (e *exprEvaluator) options() []exprlang.Option {
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.functions == nil {
		return options
	}
	options = append(options, exprlang.Function(callFunction, func(params ...any) (any, error) {
		name, _ := params[0].(string)
		return e.call(name, params[1:]...)
	}, new(func(string, ...any) (any, error))))
	for _, name := range e.functions.Names() {
		fn, _ := e.functions.Lookup(name)
		options = append(options, exprlang.Function(name, func(params ...any) (any, error) {
			return fn(params...)
		}))
	}
	return options
}
