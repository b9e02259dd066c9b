package props

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeUnderflow reports an ExitScope call on a path that has no
	// entered scope left to exit.
	ErrScopeUnderflow = errors.New("props: scope underflow")
	// ErrNilRegistry reports a call on a nil *Registry.
	ErrNilRegistry = errors.New("props: registry is nil")

	ErrNoEvaluator     = errors.New("props: evaluator not configured")
	ErrEmptyExpression = errors.New("props: expression must not be empty")

	// ErrUnknownFunction reports a call to a name nothing was registered under.
	ErrUnknownFunction = errors.New("props: unknown function")
	// ErrInvalidFunction reports a registration rules could never call.
	ErrInvalidFunction = errors.New("props: invalid function")
	ErrFunctionExists  = errors.New("props: function already registered")
)

// ScopeError records a failed scope lifecycle operation and the path it ran
// on.
type ScopeError struct {
	Op    string
	Path  PathID
	Scope string
	Err   error
}

func (e *ScopeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Scope == "" {
		return fmt.Sprintf("props: %s path=%s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("props: %s path=%s scope=%s: %v", e.Op, e.Path, e.Scope, e.Err)
}

func (e *ScopeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError records which engine failed on which expression, and
// where.
type EvaluationError struct {
	Engine string
	Expr   string
	Path   PathID
	Scope  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("props: %s evaluation failed", e.Engine)
	if e.Expr != "" {
		msg += fmt.Sprintf(" expr=%q", e.Expr)
	}
	if e.Path != "" {
		msg += " path=" + string(e.Path)
	}
	if e.Scope != "" {
		msg += " scope=" + e.Scope
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// evaluationError wraps err, or fills the blank fields when err already is
// an EvaluationError. A nil err stays nil.
func evaluationError(engine, expr string, path PathID, scope string, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if errors.As(err, &existing) {
		if existing.Engine == "" {
			existing.Engine = engine
		}
		if existing.Expr == "" {
			existing.Expr = expr
		}
		if existing.Path == "" {
			existing.Path = path
		}
		if existing.Scope == "" {
			existing.Scope = scope
		}
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expr, Path: path, Scope: scope, Err: err}
}
