package statechart

import "github.com/rs/zerolog"

// chartOptions holds the configuration attributes of spec.md §6.
type chartOptions struct {
	allowEventWithoutTransition bool
	enableSelfTransitionEntries bool
	atomicConfigurationUpdate   bool
	errorOnExecution            bool
	validateDisconnectedStates  bool
	strictStates                bool
	logger                      zerolog.Logger
}

func defaultChartOptions() chartOptions {
	return chartOptions{
		allowEventWithoutTransition: false,
		enableSelfTransitionEntries: true,
		atomicConfigurationUpdate:   false, // SCXML-strict visibility by default, per spec.md §9
		errorOnExecution:            true,
		validateDisconnectedStates:  false, // permissive: parallel regions are expected
		strictStates:                false,
		logger:                      zerolog.Nop(),
	}
}

// Option configures a Chart at construction time (spec.md §6's
// "Configuration attributes" table), mirroring the teacher's
// Option func(*Machine) functional-options pattern.
type Option func(*chartOptions)

// WithAllowEventWithoutTransition sets allow_event_without_transition:
// when true, events that match no transition are tolerated silently;
// when false (default), Send returns a *TransitionNotAllowedError.
func WithAllowEventWithoutTransition(v bool) Option {
	return func(o *chartOptions) { o.allowEventWithoutTransition = v }
}

// WithSelfTransitionEntries sets enable_self_transition_entries: when true
// (default), a transition whose source equals its sole target runs full
// exit/entry; when false, it only runs the transition's actions.
func WithSelfTransitionEntries(v bool) Option {
	return func(o *chartOptions) { o.enableSelfTransitionEntries = v }
}

// WithAtomicConfigurationUpdate sets atomic_configuration_update: when
// true, the configuration mutates atomically after transition actions run
// (legacy mode); when false (default, SCXML-strict), the configuration is
// visibly partial/empty while transition actions run.
func WithAtomicConfigurationUpdate(v bool) Option {
	return func(o *chartOptions) { o.atomicConfigurationUpdate = v }
}

// WithErrorOnExecution sets error_on_execution: when true (default),
// callback errors are caught and converted to an internal error.execution
// event; when false, they propagate to the Send/Start caller.
func WithErrorOnExecution(v bool) Option {
	return func(o *chartOptions) { o.errorOnExecution = v }
}

// WithValidateDisconnectedStates sets validate_disconnected_states: when
// true, chart validation additionally requires every non-history state be
// reachable from the root, either by default entry (initial children and
// parallel regions) or as the target of a transition from a reachable
// state; when false (default), no reachability check is made.
func WithValidateDisconnectedStates(v bool) Option {
	return func(o *chartOptions) { o.validateDisconnectedStates = v }
}

// WithStrictStates sets strict_states: when true, chart construction
// rejects any non-final state with no outgoing transition.
func WithStrictStates(v bool) Option {
	return func(o *chartOptions) { o.strictStates = v }
}

// WithLogger attaches a structured logger. The interpreter logs the
// swallowed second error.execution fault (error level), each caught action
// error that becomes error.execution (warn level), failures while
// processing a delayed event (error level), and rejected
// TransitionNotAllowed events (debug level). Defaults to a
// no-op logger, matching the teacher's "the library has no global state"
// stance (internal/core wires a logger only when a caller asks for one).
func WithLogger(l zerolog.Logger) Option {
	return func(o *chartOptions) { o.logger = l }
}
