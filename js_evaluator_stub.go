//go:build !js_eval

package props

// NewJSEvaluator returns nil unless the binary is built with -tags js_eval.
func NewJSEvaluator(...EngineOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}

func isJSEvaluator(Evaluator) bool {
	return false
}
