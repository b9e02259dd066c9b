//go:build js_eval

package props

import (
	"github.com/dop251/goja"
)

type jsEvaluator struct {
	engine
}

// NewJSEvaluator returns an Evaluator backed by goja. The expression is run
// as the body of a return statement.
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	return &jsEvaluator{engine: newEngine("js", opts)}
}

func (e *jsEvaluator) Evaluate(rule RuleContext, expression string) (any, error) {
	compiled, err := e.Compile(expression)
	if err != nil {
		return nil, e.fail(expression, rule, err)
	}
	return compiled.Evaluate(rule)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, e.failCompile(expression, ErrEmptyExpression)
	}
	program, err := cachedProgram(e.engine, expression, func() (*goja.Program, error) {
		return goja.Compile("rule", "(function(){ return ("+expression+"); })()", true)
	})
	if err != nil {
		return nil, e.failCompile(expression, err)
	}
	return ruleFunc(func(rule RuleContext) (any, error) {
		// goja runtimes are not safe for concurrent use, so each run gets
		// its own.
		vm := goja.New()
		for name, value := range ruleVariables(rule.withDefaults()) {
			if err := vm.Set(name, value); err != nil {
				return nil, e.fail(expression, rule, err)
			}
		}
		for name, fn := range e.callables() {
			if err := vm.Set(name, fn); err != nil {
				return nil, e.fail(expression, rule, err)
			}
		}
		out, err := vm.RunProgram(program)
		if err != nil {
			return nil, e.fail(expression, rule, err)
		}
		return out.Export(), nil
	}), nil
}

func jsEvaluatorAvailable() bool {
	return true
}

func isJSEvaluator(e Evaluator) bool {
	_, ok := e.(*jsEvaluator)
	return ok
}
