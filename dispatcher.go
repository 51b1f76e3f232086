package statechart

// runActions invokes actions in order, collecting every returned value
// (including nil) in invocation order. It stops at the first error,
// returning the values collected so far alongside it; the caller decides
// whether to catch the error (error_on_execution) or propagate it.
//
// This is the callback dispatcher of spec.md §4.6: argument adaptation to
// a callback's declared formal parameters is a host-language front-end
// concern (spec.md §1 Out of scope) — here every ActionFunc/GuardFunc
// already has the one fixed signature, and simply reads the EvalContext
// fields relevant to where it was invoked from.
func runActions(actions []ActionFunc, evalCtx *EvalContext) ([]any, error) {
	values := make([]any, 0, len(actions))
	for _, action := range actions {
		v, err := action(evalCtx)
		values = append(values, v)
		if err != nil {
			return values, err
		}
	}
	return values, nil
}
