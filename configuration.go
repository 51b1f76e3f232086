package statechart

import "sort"

// Configuration is the ordered set of currently active states (spec.md
// §3/§4.1). Document order means ancestors sort before descendants and
// siblings sort by declaration order.
type Configuration struct {
	chart   *Chart
	active  map[StateID]*State
	history map[StateID][]StateID // history pseudo-state ID -> recorded states
}

func newConfiguration(chart *Chart) *Configuration {
	return &Configuration{
		chart:   chart,
		active:  make(map[StateID]*State),
		history: make(map[StateID][]StateID),
	}
}

// Contains reports whether id is active.
func (cfg *Configuration) Contains(id StateID) bool {
	_, ok := cfg.active[id]
	return ok
}

func (cfg *Configuration) add(s *State) {
	cfg.active[s.ID] = s
}

func (cfg *Configuration) remove(s *State) {
	delete(cfg.active, s.ID)
}

// sortedByDocOrder returns the given states ordered ancestors-before-
// descendants, siblings in declaration order.
func sortedByDocOrder(states []*State) []*State {
	out := append([]*State(nil), states...)
	sort.Slice(out, func(i, j int) bool { return out[i].docIndex < out[j].docIndex })
	return out
}

// StateIDs returns the active configuration as an ordered slice of IDs,
// the public shape returned by Interpreter.Configuration (spec.md §6).
func (cfg *Configuration) StateIDs() []StateID {
	states := make([]*State, 0, len(cfg.active))
	for _, s := range cfg.active {
		states = append(states, s)
	}
	states = sortedByDocOrder(states)
	ids := make([]StateID, len(states))
	for i, s := range states {
		ids[i] = s.ID
	}
	return ids
}

// atomicStatesInConfig returns the atomic and final leaf states currently
// active, in document order — the selector's iteration order (spec.md
// §4.1/§4.3).
func (cfg *Configuration) atomicStatesInConfig() []*State {
	var atoms []*State
	for _, s := range cfg.active {
		if len(s.Children) == 0 {
			atoms = append(atoms, s)
		}
	}
	return sortedByDocOrder(atoms)
}

// descendantsInConfig returns active descendants of s (not including s).
func (cfg *Configuration) descendantsInConfig(s *State) []*State {
	var out []*State
	for _, active := range cfg.active {
		if active != s && isDescendantOrSelf(active, s) {
			out = append(out, active)
		}
	}
	return sortedByDocOrder(out)
}

// recordHistory stores the active descendant set for a history
// pseudo-state, filtered by depth (spec.md §3 "History record").
func (cfg *Configuration) recordHistory(hist *State, descendants []*State) {
	ids := make([]StateID, 0, len(descendants))
	switch hist.Kind {
	case HistoryShallow:
		// Direct children of the history's parent that are (or contain)
		// an active descendant.
		parent := hist.Parent
		for _, child := range parent.Children {
			if child.Kind.isHistory() {
				continue
			}
			for _, d := range descendants {
				if isDescendantOrSelf(d, child) {
					ids = append(ids, child.ID)
					break
				}
			}
		}
	case HistoryDeep:
		for _, d := range descendants {
			if len(d.Children) == 0 {
				ids = append(ids, d.ID)
			}
		}
	}
	cfg.history[hist.ID] = ids
}

// historyRecord returns the recorded state IDs for a history pseudo-state
// and whether a record exists yet.
func (cfg *Configuration) historyRecord(hist *State) ([]StateID, bool) {
	ids, ok := cfg.history[hist.ID]
	return ids, ok
}

// invariantHolds checks spec.md §8 property 3: every active state other
// than the root has its parent also active. Exercised by tests as a
// consistency guard, not called on the hot path.
func (cfg *Configuration) invariantHolds() bool {
	for _, s := range cfg.active {
		if s.Parent != nil && !cfg.Contains(s.Parent.ID) {
			return false
		}
	}
	return true
}
