package statechart

// selectTransitions implements spec.md §4.3: for every atomic state in the
// configuration, in document order, walk that state and its ancestors
// (innermost first) looking for the first enabled transition; collapse the
// per-atom picks into a conflict-free set, preferring the earlier atom
// (i.e. earlier document order) whenever two candidates' exit sets
// overlap.
func selectTransitions(chart *Chart, cfg *Configuration, name EventName, hasEvent bool, evalCtxFor func(*State) *EvalContext) []*Transition {
	atoms := cfg.atomicStatesInConfig()

	var candidates []*Transition
	for _, atom := range atoms {
		for _, s := range ancestorsInclusive(atom) {
			var picked *Transition
			for _, t := range s.Transitions {
				if !t.matches(name, hasEvent) {
					continue
				}
				if t.Guard != nil && !t.Guard(evalCtxFor(s)) {
					continue
				}
				picked = t
				break
			}
			if picked != nil {
				candidates = append(candidates, picked)
				break
			}
		}
	}

	var selected []*Transition
	for _, t := range candidates {
		exitT := computeExitSet(chart, cfg, []*Transition{t})
		conflict := false
		for _, s := range selected {
			exitS := computeExitSet(chart, cfg, []*Transition{s})
			if statesIntersect(exitT, exitS) {
				conflict = true
				break
			}
		}
		if !conflict {
			selected = append(selected, t)
		}
	}
	return selected
}

func statesIntersect(a, b []*State) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[StateID]struct{}, len(a))
	for _, s := range a {
		seen[s.ID] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s.ID]; ok {
			return true
		}
	}
	return false
}
