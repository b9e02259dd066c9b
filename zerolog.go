package props

import "github.com/rs/zerolog"

// ZerologLogger writes scope and evaluator events to a zerolog logger.
// Lifecycle events are logged at debug level, failures at warn.
type ZerologLogger struct {
	Logger zerolog.Logger
}

var (
	_ ScopeLogger     = ZerologLogger{}
	_ EvaluatorLogger = ZerologLogger{}
)

// LogScope implements ScopeLogger.
func (l ZerologLogger) LogScope(event ScopeEvent) {
	entry := l.Logger.Debug()
	if event.Err != nil || event.Clamped {
		entry = l.Logger.Warn().Err(event.Err)
	}
	entry = entry.
		Str("action", string(event.Action)).
		Str("path", string(event.Path)).
		Int("depth", event.Depth)
	if event.Parent != "" {
		entry = entry.Str("parent", string(event.Parent))
	}
	if event.ScopeID != "" {
		entry = entry.Str("scope", event.ScopeID)
	}
	if event.Label != "" {
		entry = entry.Str("label", event.Label)
	}
	if event.Kind != "" {
		entry = entry.Str("kind", string(event.Kind))
	}
	if event.Clamped {
		entry = entry.Bool("clamped", true)
	}
	entry.Msg("scope " + string(event.Action))
}

// LogEvaluation implements EvaluatorLogger.
func (l ZerologLogger) LogEvaluation(event EvaluatorLogEvent) {
	entry := l.Logger.Debug()
	if event.Err != nil {
		entry = l.Logger.Warn().Err(event.Err)
	}
	entry.
		Str("engine", event.Engine).
		Str("expr", event.Expr).
		Str("path", string(event.Path)).
		Str("scope", event.Scope).
		Dur("duration", event.Duration).
		Msg("rule evaluated")
}

// WithZerolog routes both scope and evaluator events to logger.
func WithZerolog(logger zerolog.Logger) Option {
	adapter := ZerologLogger{Logger: logger}
	return func(cfg *registryConfig) {
		cfg.scopeLogger = adapter
		cfg.evalLogger = adapter
	}
}
