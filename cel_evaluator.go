package props

import (
	"reflect"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

type celEvaluator struct {
	engine
}

// NewCELEvaluator returns an Evaluator backed by cel-go. Keys that are valid
// CEL identifiers are declared as dyn variables, and every key is reachable
// through props["key"]. Registered functions are reached with
// call("name", [args]).
func NewCELEvaluator(opts ...EngineOption) Evaluator {
	return &celEvaluator{engine: newEngine("cel", opts)}
}

func (e *celEvaluator) Evaluate(rule RuleContext, expression string) (any, error) {
	compiled, err := e.Compile(expression)
	if err != nil {
		return nil, e.fail(expression, rule, err)
	}
	return compiled.Evaluate(rule)
}

// Compile defers building the program to the first run, since the declared
// variables depend on the table the rule sees.
func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, e.failCompile(expression, ErrEmptyExpression)
	}
	return ruleFunc(func(rule RuleContext) (any, error) {
		rule = rule.withDefaults()
		program, err := e.program(expression, celIdentifiers(rule.Snapshot))
		if err != nil {
			return nil, e.fail(expression, rule, err)
		}
		vars := ruleVariables(rule)
		if _, ok := vars["scope"]; !ok {
			vars["scope"] = map[string]any{}
		}
		out, _, err := program.Eval(vars)
		if err != nil {
			return nil, e.fail(expression, rule, err)
		}
		return out.Value(), nil
	}), nil
}

func (e *celEvaluator) program(expression string, identifiers []string) (celgo.Program, error) {
	key := strings.Join(identifiers, ",") + "|" + expression
	return cachedProgram(e.engine, key, func() (celgo.Program, error) {
		env, err := celgo.NewEnv(e.declarations(identifiers)...)
		if err != nil {
			return nil, err
		}
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, issues.Err()
		}
		return env.Program(ast)
	})
}

func (e *celEvaluator) declarations(identifiers []string) []celgo.EnvOption {
	decls := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
		celgo.Variable("scope", celgo.DynType),
		celgo.Variable(tableVariable, celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	if e.functions != nil {
		decls = append(decls, celgo.Function(callFunction, celgo.Overload(
			"props_call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.BinaryBinding(e.callBinding),
		)))
	}
	for _, key := range identifiers {
		decls = append(decls, celgo.Variable(key, celgo.DynType))
	}
	return decls
}

var anySlice = reflect.TypeOf([]any{})

func (e *celEvaluator) callBinding(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("props: call name must be a string")
	}
	args, err := argsVal.ConvertToNative(anySlice)
	if err != nil {
		return types.NewErr("props: call arguments must be a list: %v", err)
	}
	result, err := e.call(name, args.([]any)...)
	if err != nil {
		return types.WrapErr(err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

// celReserved holds the bound names and CEL reserved words that cannot be
// declared as table variables.
var celReserved = map[string]struct{}{
	"now": {}, "args": {}, "metadata": {}, "scope": {}, tableVariable: {}, callFunction: {},
	"as": {}, "break": {}, "const": {}, "continue": {}, "else": {}, "false": {},
	"for": {}, "function": {}, "if": {}, "import": {}, "in": {}, "let": {},
	"loop": {}, "package": {}, "namespace": {}, "null": {}, "return": {},
	"true": {}, "var": {}, "void": {},
}

// celIdentifiers lists the keys that can be declared as variables, sorted
// so the program cache key is stable.
func celIdentifiers(snapshot map[string]any) []string {
	out := make([]string, 0, len(snapshot))
	for key := range snapshot {
		if _, reserved := celReserved[key]; reserved || !identifierPattern.MatchString(key) {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
