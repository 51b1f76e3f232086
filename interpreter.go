package statechart

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Interpreter drives one Chart through the run-to-completion event loop of
// spec.md §4.5. It is not safe for concurrent use from multiple goroutines;
// Send/Start/Stop serialize on an internal mutex, and a Send invoked from
// inside a callback is queued rather than recursed into.
type Interpreter struct {
	mu sync.Mutex

	chart *Chart
	cfg   *Configuration
	queue *eventQueue
	ext   *Context

	started bool
	stopped bool

	// processing guards against re-entrant Send calls made from inside a
	// callback: such a call enqueues its event and returns immediately,
	// letting the outer RTC loop drain it once the current macrostep ends.
	processing bool

	// processingErrorEventDepth is non-zero while the event currently being
	// macrostepped is itself an error.execution event (spec.md §4.7): a
	// second failure while handling one is logged and dropped rather than
	// re-raised, to avoid an infinite error loop.
	processingErrorEventDepth int

	listeners      []listenerEntry
	nextListenerID int

	logger zerolog.Logger
}

// ListenerHandle identifies a registration made through AddListener, so it
// can later be passed to RemoveListener. Go func values aren't comparable
// (except to nil), so a plain func can't be handed back for removal the way
// spec.md §6's "remove_listener(listener)" implies; a handle stands in for
// the listener's identity instead.
type ListenerHandle int

type listenerEntry struct {
	id int
	fn func(EventName, []StateID)
}

// New constructs an Interpreter for chart. The interpreter is inert until
// Start is called.
func New(chart *Chart) (*Interpreter, error) {
	if chart == nil {
		return nil, &DefinitionError{Message: "chart is nil"}
	}
	ip := &Interpreter{
		chart:  chart,
		cfg:    newConfiguration(chart),
		queue:  newEventQueue(),
		ext:    NewContext(),
		logger: chart.options.logger,
	}
	ip.queue.fire = func(ev eventRecord) {
		ip.mu.Lock()
		defer ip.mu.Unlock()
		ip.queue.pushExternal(ev)
		if !ip.processing && ip.started && !ip.stopped {
			ip.runUntilStable()
		}
	}
	return ip, nil
}

// AddListener registers fn to be called after every microstep with the
// event that triggered it and the resulting configuration, adapting the
// publish/subscribe concept of an EventPublisher to a single in-process
// callback (spec.md §6 "add_listener(listener)"; there is no network
// transport here). The returned handle can be passed to RemoveListener to
// unregister fn later.
func (ip *Interpreter) AddListener(fn func(EventName, []StateID)) ListenerHandle {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	ip.nextListenerID++
	id := ip.nextListenerID
	ip.listeners = append(ip.listeners, listenerEntry{id: id, fn: fn})
	return ListenerHandle(id)
}

// RemoveListener unregisters a listener previously registered with
// AddListener (spec.md §6 "remove_listener(listener)"). A handle that is
// unknown or was already removed is a no-op.
func (ip *Interpreter) RemoveListener(h ListenerHandle) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	for i, le := range ip.listeners {
		if le.id == int(h) {
			ip.listeners = append(ip.listeners[:i:i], ip.listeners[i+1:]...)
			return
		}
	}
}

// Ext returns the extended-state store shared by every callback.
func (ip *Interpreter) Ext() *Context { return ip.ext }

// Configuration returns the current active configuration, document order.
func (ip *Interpreter) Configuration() []StateID {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.cfg.StateIDs()
}

// IsIn reports whether id is active.
func (ip *Interpreter) IsIn(id StateID) bool {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.cfg.Contains(id)
}

// IsTerminated reports whether the interpreter has reached a final
// configuration (spec.md §5 "Termination"): the root's active child is a
// Final state (flat chart), or, for a Parallel root, every region holds a
// Final descendant.
func (ip *Interpreter) IsTerminated() bool {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.isTerminatedLocked()
}

func (ip *Interpreter) isTerminatedLocked() bool {
	root := ip.chart.root
	if root.Kind == Parallel {
		for _, region := range root.Children {
			if region.Kind.isHistory() {
				continue
			}
			if !regionHasFinalDescendant(ip.cfg, region) {
				return false
			}
		}
		return true
	}
	for _, child := range root.Children {
		if child.Kind.isHistory() {
			continue
		}
		if child.Kind == Final && ip.cfg.Contains(child.ID) {
			return true
		}
	}
	return false
}

// Snapshot is the optional persisted-state layout spec.md §6 names but does
// not require: the active configuration plus every recorded history entry.
// No extended-state data is included; callers that use Ext should persist
// it themselves via Context.Snapshot/Restore.
type Snapshot struct {
	Configuration []StateID
	History       map[StateID][]StateID
}

// Snapshot captures the interpreter's current configuration and history
// records, suitable for package persist to encode.
func (ip *Interpreter) Snapshot() Snapshot {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	hist := make(map[StateID][]StateID, len(ip.cfg.history))
	for k, v := range ip.cfg.history {
		hist[k] = append([]StateID(nil), v...)
	}
	return Snapshot{Configuration: ip.cfg.StateIDs(), History: hist}
}

// Restore replaces the interpreter's configuration and history with a
// previously captured Snapshot, without running any entry/exit actions,
// and marks the interpreter as started. It must be called instead of
// Start, before any Send.
func (ip *Interpreter) Restore(snap Snapshot) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	if ip.started {
		return &DefinitionError{Message: "Restore called after Start"}
	}
	cfg := newConfiguration(ip.chart)
	for _, id := range snap.Configuration {
		s := ip.chart.State(id)
		if s == nil {
			return &LookupError{Kind: "state", Name: string(id)}
		}
		cfg.add(s)
	}
	for histID, ids := range snap.History {
		if ip.chart.State(histID) == nil {
			return &LookupError{Kind: "state", Name: string(histID)}
		}
		cfg.history[histID] = append([]StateID(nil), ids...)
	}
	if !cfg.invariantHolds() {
		return &DefinitionError{Message: "snapshot configuration violates the active-ancestor invariant"}
	}
	ip.cfg = cfg
	ip.started = true
	return nil
}

// Start performs the chart's implicit initial entry (spec.md §4.5 "Start")
// and drains any resulting eventless/done transitions to quiescence.
func (ip *Interpreter) Start(ctx context.Context) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	if ip.started {
		return nil
	}
	ip.started = true

	root := ip.chart.root
	entry := computeEntrySet(ip.chart, ip.cfg, []*Transition{{
		Targets: []StateID{root.ID},
	}})
	if len(entry) == 0 {
		entry = []*State{root}
	}
	ip.processing = true
	defer func() { ip.processing = false }()

	for _, s := range entry {
		ip.cfg.add(s)
		if _, err := runActions(s.OnEntry, &EvalContext{Ctx: ctx, Event: "__initial__", State: s.ID, Ext: ip.ext}); err != nil {
			return err
		}
		ip.checkDoneOnEntry(ctx, s, "__initial__", nil)
	}
	ip.notifyListeners("__initial__")
	return ip.drainLocked(ctx)
}

// Send enqueues an external event and runs the RTC loop until the
// interpreter is again stable (no enabled eventless transitions and no
// pending internal events). It returns the values returned by the
// on-transition callbacks of whichever transitions fired in direct
// response to this event (spec.md §6): values from any subsequent
// eventless/internal chain reaction are not included.
//
// A Send invoked reentrantly from inside a running callback is queued and
// returns a nil slice immediately; its effects are still applied, just not
// synchronously reported to that caller.
func (ip *Interpreter) Send(ctx context.Context, name EventName, data any) ([]any, error) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	if !ip.started {
		return nil, &NotStartedError{}
	}
	if ip.stopped {
		return nil, &NotStartedError{}
	}
	if ip.processing {
		ip.queue.pushExternal(eventRecord{name: name, data: data})
		return nil, nil
	}

	ip.queue.pushExternal(eventRecord{name: name, data: data})
	ip.processing = true
	defer func() { ip.processing = false }()

	values, err := ip.processOneExternal(ctx)
	if err != nil {
		return values, err
	}
	if err := ip.drainLocked(ctx); err != nil {
		return values, err
	}
	return values, nil
}

// RaiseInternal enqueues name on the internal queue, exactly as if the chart
// itself had raised it via a done.state.*/error.execution-style synthesis
// (spec.md §6 "raise_internal(event_name, payload?)"): it lets a host emulate
// an action-initiated event from outside the chart. Like those internal
// events, it is never subject to the allow_event_without_transition check.
// A call made from inside a running callback is queued and drained by the
// outer macrostep once it completes, mirroring Send's re-entrancy handling.
func (ip *Interpreter) RaiseInternal(name EventName, data any) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	if !ip.started {
		return &NotStartedError{}
	}
	if ip.stopped {
		return &NotStartedError{}
	}

	ip.queue.pushInternal(eventRecord{name: name, data: data})
	if ip.processing {
		return nil
	}

	ip.processing = true
	defer func() { ip.processing = false }()
	return ip.drainLocked(context.Background())
}

// SendDelayed schedules name to be enqueued externally after delay elapses
// (spec.md §5 "Queued delayed event"). cancelID may be empty; a non-empty
// id can later be passed to Cancel.
func (ip *Interpreter) SendDelayed(name EventName, data any, delay time.Duration, cancelID string) {
	ip.queue.schedule(eventRecord{name: name, data: data}, delay, cancelID)
}

// Cancel cancels a delayed event scheduled with a matching cancelID, if it
// has not already fired.
func (ip *Interpreter) Cancel(cancelID string) {
	ip.queue.cancel(cancelID)
}

// Stop halts the interpreter: pending delayed events are cancelled and
// further Send calls return a NotStartedError. The final configuration is
// left intact and still queryable via Configuration.
func (ip *Interpreter) Stop() {
	ip.mu.Lock()
	ip.stopped = true
	ip.mu.Unlock()
	ip.queue.stopAll()
}

// runUntilStable is invoked from a delayed-event timer goroutine. It
// drives one external event through the loop exactly as Send does, but
// has no caller to report transition-action return values to.
func (ip *Interpreter) runUntilStable() {
	ip.processing = true
	defer func() { ip.processing = false }()
	ctx := context.Background()
	if _, err := ip.processOneExternal(ctx); err != nil {
		ip.logger.Error().Err(err).Msg("statechart: delayed event processing failed")
		return
	}
	if err := ip.drainLocked(ctx); err != nil {
		ip.logger.Error().Err(err).Msg("statechart: drain after delayed event failed")
	}
}

// processOneExternal pops and macrosteps exactly one external event (plus
// whatever internal events it raises, per spec.md §4.5 step 2), returning
// the direct transition-action values.
func (ip *Interpreter) processOneExternal(ctx context.Context) ([]any, error) {
	ev, ok := ip.queue.popExternal()
	if !ok {
		return nil, nil
	}
	return ip.macrostep(ctx, ev, true, true)
}

// drainLocked repeatedly fires eventless transitions and internal events
// until the configuration is stable, per spec.md §4.5 steps 3-4. Caller
// must hold ip.mu.
func (ip *Interpreter) drainLocked(ctx context.Context) error {
	for {
		if ev, ok := ip.queue.popInternal(); ok {
			if _, err := ip.macrostep(ctx, ev, false, false); err != nil {
				return err
			}
			continue
		}
		fired, err := ip.tryEventlessStep(ctx)
		if err != nil {
			return err
		}
		if fired {
			continue
		}
		return nil
	}
}

// tryEventlessStep fires one microstep of eventless transitions, if any
// are enabled. Returns false if none are enabled (chart is stable).
func (ip *Interpreter) tryEventlessStep(ctx context.Context) (bool, error) {
	selected := selectTransitions(ip.chart, ip.cfg, "", false, ip.evalCtxFactory(ctx, "", nil))
	if len(selected) == 0 {
		return false, nil
	}
	if _, err := ip.applyMicrostep(ctx, selected, "", nil); err != nil {
		return false, err
	}
	return true, nil
}

// macrostep processes ev: selects and applies one microstep for it (or
// none, if no transition is enabled for it, in which case the event is
// simply discarded). The allow_event_without_transition tolerance check
// (spec.md §8 invariant 11) applies only to externally sent events: events
// the interpreter raises on itself (done.state.*, error.execution, and any
// other internal/eventless event) are always safe to drop unconsumed, the
// same as real SCXML processors treat them — only a host-originated send
// with no matching transition is ever a rejection.
func (ip *Interpreter) macrostep(ctx context.Context, ev eventRecord, external, reportValues bool) ([]any, error) {
	if string(ev.name) == "error.execution" {
		ip.processingErrorEventDepth++
		defer func() { ip.processingErrorEventDepth-- }()
	}

	selected := selectTransitions(ip.chart, ip.cfg, ev.name, true, ip.evalCtxFactory(ctx, ev.name, ev.data))
	if len(selected) == 0 {
		if external && !ip.chart.options.allowEventWithoutTransition {
			ip.logger.Debug().Str("event", string(ev.name)).Strs("configuration", stateIDsToStrings(ip.cfg.StateIDs())).Msg("statechart: event rejected, no enabled transition")
			return nil, &TransitionNotAllowedError{EventName: ev.name, Configuration: ip.cfg.StateIDs()}
		}
		return nil, nil
	}
	values, err := ip.applyMicrostep(ctx, selected, ev.name, ev.data)
	if !reportValues {
		return nil, err
	}
	return values, err
}

// evalCtxFactory returns a builder for guard/action EvalContexts sharing
// the Ctx/Event/EventData/Ext for one macrostep.
func (ip *Interpreter) evalCtxFactory(ctx context.Context, name EventName, data any) func(*State) *EvalContext {
	return func(s *State) *EvalContext {
		return &EvalContext{Ctx: ctx, Event: name, EventData: data, Source: s.ID, Ext: ip.ext}
	}
}

// applyMicrostep executes the ordered effects of spec.md §4.4 for the
// selected transition set T, honoring the atomic-configuration-update
// option (spec.md §6, legacy mode) and error_on_execution (spec.md §4.7).
func (ip *Interpreter) applyMicrostep(ctx context.Context, T []*Transition, name EventName, data any) ([]any, error) {
	exitSet := computeExitSet(ip.chart, ip.cfg, T)
	entrySet := computeEntrySet(ip.chart, ip.cfg, T)
	actionTransitions := sortTransitionsDocOrder(T)

	previous := ip.cfg.StateIDs()
	newConfig := computeNewConfigurationIDs(ip.cfg, exitSet, entrySet)

	// Record history before any mutation, for every container in the exit
	// set that owns history pseudo-state children (spec.md §4.4 step 1).
	for _, s := range exitSet {
		if s.Kind == Compound || s.Kind == Parallel {
			for _, child := range s.Children {
				if child.Kind.isHistory() {
					ip.cfg.recordHistory(child, ip.cfg.descendantsInConfig(s))
				}
			}
		}
	}

	atomic := ip.chart.options.atomicConfigurationUpdate

	// Step 1: exit.
	for _, s := range exitSet {
		if _, err := runActions(s.OnExit, &EvalContext{Ctx: ctx, Event: name, EventData: data, State: s.ID, Ext: ip.ext}); err != nil {
			// Step-1 (exit) action errors are never caught (spec.md §4.7):
			// they propagate directly to the Send/Start caller.
			return nil, err
		}
		if !atomic {
			ip.cfg.remove(s)
		}
	}

	// Step 2: transition actions.
	var allValues []any
	var stepErr error
stepTwo:
	for _, t := range actionTransitions {
		var target StateID
		if len(t.Targets) > 0 {
			target = t.Targets[0]
		}
		evalCtx := &EvalContext{
			Ctx: ctx, Event: name, EventData: data,
			Source: t.Source.ID, Target: target,
			Ext: ip.ext,
		}
		if !atomic {
			evalCtx.PreviousConfiguration = previous
			evalCtx.NewConfiguration = newConfig
		}
		if name == "error.execution" {
			evalCtx.Error, _ = data.(error)
		}
		values, err := runActions(t.Actions, evalCtx)
		allValues = append(allValues, values...)
		if err != nil {
			stepErr = err
			break stepTwo
		}
	}

	if stepErr != nil {
		return allValues, ip.handleExecutionError(ctx, stepErr, name, atomic)
	}

	// Step 3: entry.
	for _, s := range entrySet {
		if !atomic {
			ip.cfg.add(s)
		}
		if _, err := runActions(s.OnEntry, &EvalContext{Ctx: ctx, Event: name, EventData: data, State: s.ID, Ext: ip.ext}); err != nil {
			return allValues, ip.handleExecutionError(ctx, err, name, atomic)
		}
		ip.checkDoneOnEntry(ctx, s, name, data)
	}

	if atomic {
		for _, s := range exitSet {
			ip.cfg.remove(s)
		}
		for _, s := range entrySet {
			ip.cfg.add(s)
		}
		for _, s := range entrySet {
			ip.checkDoneOnEntry(ctx, s, name, data)
		}
	}

	ip.notifyListeners(name)
	return allValues, nil
}

// handleExecutionError implements spec.md §4.7: if error_on_execution is
// enabled, the failure is caught and an error.execution event is enqueued
// internally (unless we are already mid-way through handling one, in which
// case it is logged and dropped); otherwise the error propagates to the
// caller. Partial entry/exit already applied before the failure is left in
// place, per the atomic-configuration-update mode in effect.
func (ip *Interpreter) handleExecutionError(ctx context.Context, err error, name EventName, atomic bool) error {
	if !ip.chart.options.errorOnExecution {
		return err
	}
	if ip.processingErrorEventDepth > 0 {
		ip.logger.Error().Err(err).Str("event", string(name)).Msg("statechart: error while handling error.execution, dropping")
		return nil
	}
	ip.logger.Warn().Err(err).Str("event", string(name)).Msg("statechart: action error caught")
	ip.queue.pushInternal(eventRecord{name: "error.execution", data: err})
	return nil
}

// checkDoneOnEntry implements spec.md §4.4 steps 4-5: entering a Final
// state raises done.state.<parent> for a compound parent, or, once every
// sibling region of a parallel ancestor also holds a final descendant,
// done.state.<parallel-ancestor>.
func (ip *Interpreter) checkDoneOnEntry(ctx context.Context, s *State, name EventName, data any) {
	if s.Kind != Final || s.Parent == nil {
		return
	}
	parent := s.Parent
	var doneData map[string]any
	if s.DoneData != nil {
		if dd, err := s.DoneData(&EvalContext{Ctx: ctx, Event: name, EventData: data, State: s.ID, Ext: ip.ext}); err == nil {
			doneData = dd
		}
	}
	if parent.Kind == Compound {
		ip.queue.pushInternal(eventRecord{name: doneEventFor(parent.ID), data: doneData})
	}

	// Walk up to the region (the direct child of some enclosing Parallel)
	// that contains s, however deeply nested, and check whether every
	// sibling region now also holds a Final descendant.
	region := s
	for region.Parent != nil && region.Parent.Kind != Parallel {
		region = region.Parent
	}
	if region.Parent == nil {
		return
	}
	grandparent := region.Parent
	allDone := true
	for _, sibling := range grandparent.Children {
		if sibling.Kind.isHistory() {
			continue
		}
		if !regionHasFinalDescendant(ip.cfg, sibling) {
			allDone = false
			break
		}
	}
	if allDone {
		ip.queue.pushInternal(eventRecord{name: doneEventFor(grandparent.ID), data: nil})
	}
}

func stateIDsToStrings(ids []StateID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func (ip *Interpreter) notifyListeners(name EventName) {
	if len(ip.listeners) == 0 {
		return
	}
	ids := ip.cfg.StateIDs()
	for _, le := range ip.listeners {
		le.fn(name, ids)
	}
}

// computeNewConfigurationIDs predicts the post-microstep configuration
// without mutating cfg, for PreviousConfiguration/NewConfiguration
// visibility during transition actions in strict mode (spec.md §4.6).
func computeNewConfigurationIDs(cfg *Configuration, exitSet, entrySet []*State) []StateID {
	exiting := make(map[StateID]struct{}, len(exitSet))
	for _, s := range exitSet {
		exiting[s.ID] = struct{}{}
	}
	states := make(map[StateID]*State)
	for id, s := range cfg.active {
		if _, gone := exiting[id]; !gone {
			states[id] = s
		}
	}
	for _, s := range entrySet {
		states[s.ID] = s
	}
	out := make([]*State, 0, len(states))
	for _, s := range states {
		out = append(out, s)
	}
	out = sortedByDocOrder(out)
	ids := make([]StateID, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}
	return ids
}
