// Package builder provides a fluent constructor for statechart.Chart values.
package builder

import "github.com/hsmgo/statechart"

// ChartBuilder accumulates a chart's root state and its descendants before
// handing them to statechart.NewChart.
type ChartBuilder struct {
	root   *statechart.State
	states map[statechart.StateID]*statechart.State
}

// New starts a chart whose root is a Compound state with the given default
// initial child.
func New(rootID, initialChild string) *ChartBuilder {
	root := &statechart.State{
		ID:           statechart.StateID(rootID),
		Kind:         statechart.Compound,
		InitialChild: statechart.StateID(initialChild),
	}
	return &ChartBuilder{
		root:   root,
		states: map[statechart.StateID]*statechart.State{root.ID: root},
	}
}

// NewParallelRoot starts a chart whose root is a Parallel state: every
// region named via Compound/Parallel/Atomic/FinalState at the top level is
// entered simultaneously.
func NewParallelRoot(rootID string) *ChartBuilder {
	root := &statechart.State{ID: statechart.StateID(rootID), Kind: statechart.Parallel}
	return &ChartBuilder{
		root:   root,
		states: map[statechart.StateID]*statechart.State{root.ID: root},
	}
}

func (cb *ChartBuilder) rootScope() *StateBuilder {
	return &StateBuilder{cb: cb, state: cb.root}
}

// State adds an atomic top-level child of the root and returns its builder.
func (cb *ChartBuilder) State(id string) *StateBuilder { return cb.rootScope().Atomic(id) }

// Compound adds a compound top-level child of the root.
func (cb *ChartBuilder) Compound(id, initial string) *StateBuilder {
	return cb.rootScope().Compound(id, initial)
}

// Parallel adds a parallel top-level child of the root.
func (cb *ChartBuilder) Parallel(id string) *StateBuilder { return cb.rootScope().Parallel(id) }

// FinalState adds a final top-level child of the root.
func (cb *ChartBuilder) FinalState(id string) *StateBuilder { return cb.rootScope().FinalState(id) }

// History adds a history pseudo-state top-level child of the root.
func (cb *ChartBuilder) History(id string, deep bool, defaultTarget string) *StateBuilder {
	return cb.rootScope().History(id, deep, defaultTarget)
}

// Build validates the accumulated tree and produces an immutable Chart.
func (cb *ChartBuilder) Build(opts ...statechart.Option) (*statechart.Chart, error) {
	return statechart.NewChart(cb.root, opts...)
}

// StateBuilder is a cursor on one state within a ChartBuilder's tree. Its
// chained methods either decorate the current state (On, OnEntry, OnExit,
// DoneData) or add a child/sibling and move the cursor.
type StateBuilder struct {
	cb     *ChartBuilder
	state  *statechart.State
	parent *StateBuilder
}

func (sb *StateBuilder) register(child *statechart.State) *StateBuilder {
	child.Parent = sb.state
	sb.cb.states[child.ID] = child
	sb.state.Children = append(sb.state.Children, child)
	return &StateBuilder{cb: sb.cb, state: child, parent: sb}
}

// Atomic adds an atomic child.
func (sb *StateBuilder) Atomic(id string) *StateBuilder {
	return sb.register(&statechart.State{ID: statechart.StateID(id), Kind: statechart.Atomic})
}

// Compound adds a compound child with the given default initial substate.
func (sb *StateBuilder) Compound(id, initial string) *StateBuilder {
	return sb.register(&statechart.State{
		ID: statechart.StateID(id), Kind: statechart.Compound,
		InitialChild: statechart.StateID(initial),
	})
}

// Parallel adds a parallel child; its own children (added via the returned
// builder) are its regions, all entered together.
func (sb *StateBuilder) Parallel(id string) *StateBuilder {
	return sb.register(&statechart.State{ID: statechart.StateID(id), Kind: statechart.Parallel})
}

// FinalState adds a final child.
func (sb *StateBuilder) FinalState(id string) *StateBuilder {
	return sb.register(&statechart.State{ID: statechart.StateID(id), Kind: statechart.Final})
}

// History adds a history pseudo-state child recording this state's active
// descendants (shallow: direct children; deep: atomic/final leaves).
func (sb *StateBuilder) History(id string, deep bool, defaultTarget string) *StateBuilder {
	kind := statechart.HistoryShallow
	if deep {
		kind = statechart.HistoryDeep
	}
	return sb.register(&statechart.State{
		ID: statechart.StateID(id), Kind: kind,
		HistoryDefault: statechart.StateID(defaultTarget),
	})
}

// State adds an atomic sibling of the current state (same parent) and
// moves the cursor to it, enabling the flat chained style:
//
//	builder.New("light", "green").
//		State("green").On("cycle", "yellow", nil, nil).
//		State("yellow").On("cycle", "red", nil, nil)
func (sb *StateBuilder) State(id string) *StateBuilder { return sb.parent.Atomic(id) }

// Up moves the cursor back to the current state's parent, ending a nested
// Compound/Parallel child list.
func (sb *StateBuilder) Up() *StateBuilder { return sb.parent }

// On adds an external transition on the current state. guard and action
// may each be nil.
func (sb *StateBuilder) On(event, target string, guard statechart.GuardFunc, action statechart.ActionFunc) *StateBuilder {
	sb.state.Transitions = append(sb.state.Transitions, newTransition(
		[]statechart.EventDescriptor{statechart.EventDescriptor(event)},
		[]statechart.StateID{statechart.StateID(target)},
		statechart.External, guard, action,
	))
	return sb
}

// OnInternal adds an internal transition: its actions run without exiting
// the current compound state, so long as every target is one of its own
// descendants (or there are no targets at all — actions only).
func (sb *StateBuilder) OnInternal(event string, targets []string, guard statechart.GuardFunc, action statechart.ActionFunc) *StateBuilder {
	ids := make([]statechart.StateID, len(targets))
	for i, t := range targets {
		ids[i] = statechart.StateID(t)
	}
	sb.state.Transitions = append(sb.state.Transitions, newTransition(
		[]statechart.EventDescriptor{statechart.EventDescriptor(event)},
		ids, statechart.Internal, guard, action,
	))
	return sb
}

// OnEventless adds an eventless (automatic) transition, a candidate
// whenever no event is being processed during run-to-completion drain.
func (sb *StateBuilder) OnEventless(target string, guard statechart.GuardFunc, action statechart.ActionFunc) *StateBuilder {
	sb.state.Transitions = append(sb.state.Transitions, newTransition(
		nil, []statechart.StateID{statechart.StateID(target)},
		statechart.External, guard, action,
	))
	return sb
}

// OnMulti adds an external transition targeting several states at once
// (for entering multiple parallel regions directly).
func (sb *StateBuilder) OnMulti(event string, targets []string, guard statechart.GuardFunc, action statechart.ActionFunc) *StateBuilder {
	ids := make([]statechart.StateID, len(targets))
	for i, t := range targets {
		ids[i] = statechart.StateID(t)
	}
	sb.state.Transitions = append(sb.state.Transitions, newTransition(
		[]statechart.EventDescriptor{statechart.EventDescriptor(event)},
		ids, statechart.External, guard, action,
	))
	return sb
}

func newTransition(events []statechart.EventDescriptor, targets []statechart.StateID, kind statechart.TransitionKind, guard statechart.GuardFunc, action statechart.ActionFunc) *statechart.Transition {
	var actions []statechart.ActionFunc
	if action != nil {
		actions = []statechart.ActionFunc{action}
	}
	return &statechart.Transition{
		Events: events, Guard: guard, Targets: targets, Kind: kind, Actions: actions,
	}
}

// OnEntry appends an entry action to the current state.
func (sb *StateBuilder) OnEntry(fn statechart.ActionFunc) *StateBuilder {
	sb.state.OnEntry = append(sb.state.OnEntry, fn)
	return sb
}

// OnExit appends an exit action to the current state.
func (sb *StateBuilder) OnExit(fn statechart.ActionFunc) *StateBuilder {
	sb.state.OnExit = append(sb.state.OnExit, fn)
	return sb
}

// DoneData attaches a done-data function to a Final state.
func (sb *StateBuilder) DoneData(fn statechart.DoneDataFunc) *StateBuilder {
	sb.state.DoneData = fn
	return sb
}

// Build finishes the whole chart from any cursor position.
func (sb *StateBuilder) Build(opts ...statechart.Option) (*statechart.Chart, error) {
	return sb.cb.Build(opts...)
}
