package props

import "time"

// ScopeAction names a scope lifecycle transition.
type ScopeAction string

const (
	ActionEnter     ScopeAction = "enter"
	ActionExit      ScopeAction = "exit"
	ActionFork      ScopeAction = "fork"
	ActionRelease   ScopeAction = "release"
	ActionUnderflow ScopeAction = "underflow"
)

// ScopeEvent describes one lifecycle transition on a path. Err is set for a
// rejected underflow and for activity hooks that failed; Clamped marks an
// underflow that was ignored.
type ScopeEvent struct {
	Action  ScopeAction
	Path    PathID
	Parent  PathID
	ScopeID string
	Label   string
	Kind    NodeKind
	Depth   int
	Clamped bool
	Err     error
}

// EvaluatorLogEvent describes one rule evaluation.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Path     PathID
	Scope    string
	Duration time.Duration
	Err      error
}

// ScopeLogger records scope lifecycle events.
type ScopeLogger interface {
	LogScope(ScopeEvent)
}

// EvaluatorLogger records rule evaluations.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// ScopeLoggerFunc adapts a function to ScopeLogger.
type ScopeLoggerFunc func(ScopeEvent)

func (f ScopeLoggerFunc) LogScope(event ScopeEvent) {
	if f != nil {
		f(event)
	}
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogScope(ScopeEvent) {}
func (noopLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithScopeLogger attaches a scope lifecycle logger. Nil disables logging.
func WithScopeLogger(logger ScopeLogger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.scopeLogger = noopLogger{}
			return
		}
		cfg.scopeLogger = logger
	}
}

// WithEvaluatorLogger attaches an evaluation logger. Nil disables logging.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.evalLogger = noopLogger{}
			return
		}
		cfg.evalLogger = logger
	}
}
