package statechart

import "context"

// StateID uniquely identifies a state within a chart.
type StateID string

// EventName is the dotted name of a concrete event instance, e.g.
// "error.execution" or "done.state.editing".
type EventName string

// EventDescriptor is a pattern matched against an EventName. A descriptor
// matches a name iff the descriptor's tokens are a prefix of the name's
// tokens at token (".") boundaries, or the descriptor is the wildcard "*".
type EventDescriptor string

// Matches reports whether the descriptor matches the given event name, per
// spec.md §3 ("Event descriptor").
func (d EventDescriptor) Matches(name EventName) bool {
	if d == "*" {
		return true
	}
	return descriptorMatches(string(d), string(name))
}

func descriptorMatches(descriptor, name string) bool {
	if descriptor == "" {
		return false
	}
	dTokens := splitTokens(descriptor)
	nTokens := splitTokens(name)
	if len(dTokens) > len(nTokens) {
		return false
	}
	for i, tok := range dTokens {
		if tok == "*" {
			return true
		}
		if tok != nTokens[i] {
			return false
		}
	}
	return true
}

func splitTokens(s string) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			tokens = append(tokens, s[start:i])
			start = i + 1
		}
	}
	tokens = append(tokens, s[start:])
	return tokens
}

// StateKind classifies a state node.
type StateKind int

const (
	Atomic StateKind = iota
	Compound
	Parallel
	Final
	HistoryShallow
	HistoryDeep
)

func (k StateKind) String() string {
	switch k {
	case Atomic:
		return "atomic"
	case Compound:
		return "compound"
	case Parallel:
		return "parallel"
	case Final:
		return "final"
	case HistoryShallow:
		return "history_shallow"
	case HistoryDeep:
		return "history_deep"
	default:
		return "unknown"
	}
}

func (k StateKind) isHistory() bool {
	return k == HistoryShallow || k == HistoryDeep
}

// EvalContext is the fixed set of named arguments the callback dispatcher
// (spec.md §4.6) may supply to a host callback. A callback only reads the
// fields relevant to the point it was invoked from; unused fields are zero.
type EvalContext struct {
	Ctx context.Context

	// Event is the name of the event currently being processed, or
	// "__initial__" during the implicit entry performed by Start.
	Event EventName
	// EventData is the payload of Event.
	EventData any

	// Source and Target identify the transition firing (transition actions
	// only); Target is the transition's primary (first) target.
	Source StateID
	Target StateID

	// State is the state whose on_entry/on_exit is running.
	State StateID

	// PreviousConfiguration/NewConfiguration are populated for transition
	// actions only in strict mode (WithAtomicConfigurationUpdate(false),
	// the default) — spec.md §4.6.
	PreviousConfiguration []StateID
	NewConfiguration      []StateID

	// Error is set only for the actions of a transition handling an
	// error.execution event: it is the caught error (spec.md §4.7).
	Error error

	// Ext is the host-supplied extended-state store, shared across every
	// callback invocation for the lifetime of one Interpreter.
	Ext *Context
}

// ActionFunc is executable content: an entry/exit/transition action. The
// returned value is discarded for entry/exit actions and collected, in
// invocation order, for transition actions (spec.md §4.6 — the dispatcher
// "returns ... a list of returned values"); a nil return from a callback
// that does return is preserved in that list rather than dropped.
type ActionFunc func(*EvalContext) (any, error)

// GuardFunc is a transition guard predicate.
type GuardFunc func(*EvalContext) bool

// DoneDataFunc computes the payload of a done.state.* event raised when a
// final state with associated done-data is entered (spec.md §3 "done_data").
type DoneDataFunc func(*EvalContext) (map[string]any, error)

// TransitionKind distinguishes external transitions (which may exit and
// re-enter ancestors) from internal ones (spec.md §3).
type TransitionKind int

const (
	External TransitionKind = iota
	Internal
)

// Transition is an outgoing edge of a State.
type Transition struct {
	Source *State

	// Events is the set of event descriptors this transition listens for.
	// An empty Events list means the transition is eventless: it is a
	// candidate whenever no event is being processed during RTC drain.
	Events []EventDescriptor

	Guard GuardFunc

	// Targets is an ordered, non-empty list of target state IDs, except
	// for an Internal transition with no target (actions-only, no
	// configuration change).
	Targets []StateID

	Kind TransitionKind

	Actions []ActionFunc

	// docOrder is assigned at chart construction; it breaks ties between
	// transitions declared on the same state in declaration order.
	docOrder int
}

// isEventless reports whether the transition has no event descriptors.
func (t *Transition) isEventless() bool {
	return len(t.Events) == 0
}

// matches reports whether the transition is a candidate for the given
// (possibly absent) event name.
func (t *Transition) matches(name EventName, hasEvent bool) bool {
	if !hasEvent {
		return t.isEventless()
	}
	if t.isEventless() {
		return false
	}
	for _, d := range t.Events {
		if d.Matches(name) {
			return true
		}
	}
	return false
}

// State is a node in the chart's state tree (spec.md §3).
type State struct {
	ID     StateID
	Kind   StateKind
	Parent *State
	// Children is ordered; document order governs default entry and
	// event-descriptor tie-breaking.
	Children []*State

	// InitialChild names the default substate entered for a Compound
	// state. Ignored for Parallel (all children enter) and Atomic/Final
	// (no children).
	InitialChild StateID

	OnEntry []ActionFunc
	OnExit  []ActionFunc

	// DoneData is consulted only for Final states.
	DoneData DoneDataFunc

	// Transitions originate from this state, in document order.
	Transitions []*Transition

	// HistoryDefault names the transition target used the first time a
	// history pseudo-state is entered (no recorded configuration yet).
	// Meaningful only when Kind.isHistory().
	HistoryDefault StateID

	// docIndex is assigned at chart construction: a pre-order document
	// index used to compare two states' document order in O(1).
	docIndex int
}

// byID is a lookup table populated at chart construction.
type byID map[StateID]*State

// Chart is the immutable, validated metadata for one statechart. Build one
// with NewChart, or via package builder.
type Chart struct {
	root    *State
	states  byID
	options chartOptions
}

// Root returns the chart's root state.
func (c *Chart) Root() *State { return c.root }

// State looks up a state by ID. Returns nil if not found.
func (c *Chart) State(id StateID) *State { return c.states[id] }

// isAncestor reports whether a is a (strict) ancestor of b.
func isAncestor(a, b *State) bool {
	for cur := b.Parent; cur != nil; cur = cur.Parent {
		if cur == a {
			return true
		}
	}
	return false
}

// isDescendantOrSelf reports whether s is d or a descendant of d.
func isDescendantOrSelf(s, d *State) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur == d {
			return true
		}
	}
	return false
}

// ancestorsInclusive returns s and its ancestors, s first, root last.
func ancestorsInclusive(s *State) []*State {
	var chain []*State
	for cur := s; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return chain
}

// nearestCompoundOrParallelAncestorInclusive returns the nearest state at
// or above s (inclusive) that is Compound or Parallel, or nil if there is
// none.
func nearestCompoundOrParallelAncestorInclusive(s *State) *State {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == Compound || cur.Kind == Parallel {
			return cur
		}
	}
	return nil
}
