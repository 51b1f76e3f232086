package statechart

import "sort"

// commonAncestor returns the deepest common ancestor of the given states
// (the last state at which their root-first ancestor chains still agree),
// considering each state itself a candidate ancestor of itself.
func commonAncestor(states ...*State) *State {
	if len(states) == 0 {
		return nil
	}
	chains := make([][]*State, len(states))
	minLen := -1
	for i, s := range states {
		chain := ancestorsInclusive(s)
		// reverse to root-first
		for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
			chain[l], chain[r] = chain[r], chain[l]
		}
		chains[i] = chain
		if minLen == -1 || len(chain) < minLen {
			minLen = len(chain)
		}
	}
	var lca *State
	for i := 0; i < minLen; i++ {
		candidate := chains[0][i]
		for _, chain := range chains {
			if chain[i] != candidate {
				return lca
			}
		}
		lca = candidate
	}
	return lca
}

// transitionScope computes the transition domain of t (spec.md §4.4
// "Transition scope"). It is nil for a transition with no targets or no
// source.
func transitionScope(chart *Chart, t *Transition) *State {
	if len(t.Targets) == 0 || t.Source == nil {
		return nil
	}
	if !chart.options.enableSelfTransitionEntries && len(t.Targets) == 1 && t.Targets[0] == t.Source.ID {
		// Self-transition entries disabled: source never exits/re-enters,
		// only the transition's own actions run.
		return nil
	}
	if t.Kind == Internal && t.Source.Kind == Compound {
		allDescendants := true
		for _, id := range t.Targets {
			target := chart.State(id)
			if target == nil || !isDescendantOrSelf(target, t.Source) || target == t.Source {
				allDescendants = false
				break
			}
		}
		if allDescendants {
			return t.Source
		}
	}

	states := []*State{t.Source}
	for _, id := range t.Targets {
		if target := chart.State(id); target != nil {
			states = append(states, target)
		}
	}
	anc := commonAncestor(states...)
	// The domain is always a *proper* ancestor of the source: an external
	// transition back into the source's own subtree (including a plain
	// self-transition, source == target) still exits and re-enters the
	// source itself, unlike the Internal special case above. The root has
	// no proper ancestor to bump to, so a root-sourced transition of this
	// shape bottoms out at the root itself rather than an undefined domain.
	if anc == t.Source && t.Source.Parent != nil {
		anc = anc.Parent
	}
	for anc != nil && anc.Kind != Compound && anc.Parent != nil {
		anc = anc.Parent
	}
	return anc
}

// computeExitSet returns the states t's firing would exit, reverse
// document order (children before parents) — spec.md §4.4 "Exit set".
func computeExitSet(chart *Chart, cfg *Configuration, transitions []*Transition) []*State {
	set := make(map[StateID]*State)
	for _, t := range transitions {
		scope := transitionScope(chart, t)
		if scope == nil {
			continue
		}
		for _, s := range cfg.descendantsInConfig(scope) {
			set[s.ID] = s
		}
	}
	out := make([]*State, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	out = sortedByDocOrder(out)
	// reverse: children before parents
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// computeEntrySet returns the states to enter, in document order, fully
// expanded through compound/parallel default children and history
// resolution — spec.md §4.4 "Entry set".
func computeEntrySet(chart *Chart, cfg *Configuration, transitions []*Transition) []*State {
	set := make(map[StateID]*State)
	var queue []*State

	addPath := func(target *State, scope *State) {
		cur := target
		for cur != nil && cur != scope {
			if !cur.Kind.isHistory() {
				set[cur.ID] = cur
			}
			cur = cur.Parent
		}
	}

	for _, t := range transitions {
		scope := transitionScope(chart, t)
		// A source-less transition (Start's synthetic initial entry) enters
		// its targets from outside the chart: with a nil scope, addPath
		// climbs all the way to the root.
		if scope == nil && t.Source != nil {
			continue
		}
		for _, id := range t.Targets {
			target := chart.State(id)
			if target == nil {
				continue
			}
			addPath(target, scope)
			queue = append(queue, target)
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		switch s.Kind {
		case Compound:
			child := chart.State(s.InitialChild)
			if child != nil {
				set[child.ID] = child
				queue = append(queue, child)
			}
		case Parallel:
			for _, child := range s.Children {
				if child.Kind.isHistory() {
					continue
				}
				set[child.ID] = child
				queue = append(queue, child)
			}
		case HistoryShallow, HistoryDeep:
			var resolved []StateID
			if rec, ok := cfg.historyRecord(s); ok && len(rec) > 0 {
				resolved = rec
			} else if s.HistoryDefault != "" {
				resolved = []StateID{s.HistoryDefault}
			}
			for _, id := range resolved {
				st := chart.State(id)
				if st == nil {
					continue
				}
				// A deep-history record can name a state several levels
				// below the history's parent (e.g. a leaf inside a nested
				// compound region); every intermediate ancestor up to (not
				// including) the history's own parent must also enter, or
				// the downward-closed configuration invariant breaks.
				for cur := st; cur != nil && cur != s.Parent; cur = cur.Parent {
					set[cur.ID] = cur
				}
				queue = append(queue, st)
			}
		}
	}

	out := make([]*State, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	return sortedByDocOrder(out)
}

// doneEventFor builds the done.state.<id> event name for a compound or
// parallel state (spec.md GLOSSARY "Done event").
func doneEventFor(id StateID) EventName {
	return EventName("done.state." + string(id))
}

// regionHasFinalDescendant reports whether region (a direct child of a
// Parallel state) currently has an active Final descendant.
func regionHasFinalDescendant(cfg *Configuration, region *State) bool {
	if region.Kind == Final && cfg.Contains(region.ID) {
		return true
	}
	for _, d := range cfg.descendantsInConfig(region) {
		if d.Kind == Final {
			return true
		}
	}
	return false
}

// sortTransitionsDocOrder is used where a deterministic declaration order
// over a set of *Transition is required for action-execution order.
func sortTransitionsDocOrder(transitions []*Transition) []*Transition {
	out := append([]*Transition(nil), transitions...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source.docIndex != out[j].Source.docIndex {
			return out[i].Source.docIndex < out[j].Source.docIndex
		}
		return out[i].docOrder < out[j].docOrder
	})
	return out
}
