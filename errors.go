package statechart

import "fmt"

// DefinitionError is raised at chart construction (spec.md §7): no initial
// state, multiple initial states, transition from a final state,
// unreachable state, a non-final state with no outgoing transition under
// strict_states, an invalid target, or an invalid event descriptor.
type DefinitionError struct {
	State   StateID
	Message string
}

func (e *DefinitionError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("chart definition error: %s", e.Message)
	}
	return fmt.Sprintf("chart definition error: state %q: %s", e.State, e.Message)
}

// LookupError reports a name that could not be resolved. Guards and
// actions are always already-bound GuardFunc/ActionFunc values here, so no
// name resolution happens at chart construction; Interpreter.Restore
// returns a LookupError with Kind "state" when a Snapshot names a state
// the chart does not have.
type LookupError struct {
	Kind string // e.g. "state"
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// TransitionNotAllowedError is raised by Send when no transition matched
// the event and AllowEventWithoutTransition is false (spec.md §7).
type TransitionNotAllowedError struct {
	EventName     EventName
	Configuration []StateID
}

func (e *TransitionNotAllowedError) Error() string {
	return fmt.Sprintf("event %q matched no transition in configuration %v", e.EventName, e.Configuration)
}

// NotStartedError is returned by Send and RaiseInternal when they are
// called before Start (or Restore) or after Stop. Inspecting the
// configuration is not guarded by it: Configuration and IsIn return no
// error and report an empty configuration before Start.
type NotStartedError struct{}

func (e *NotStartedError) Error() string {
	return "interpreter not started: call Start first"
}
