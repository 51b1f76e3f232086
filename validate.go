package statechart

import "fmt"

// NewChart validates root and its descendants and builds an immutable
// Chart. This is chart construction time (spec.md §7): definition errors
// returned here are terminal — they are never raised again once a Chart
// exists.
func NewChart(root *State, opts ...Option) (*Chart, error) {
	if root == nil {
		return nil, &DefinitionError{Message: "root state is nil"}
	}

	o := defaultChartOptions()
	for _, opt := range opts {
		opt(&o)
	}

	states := make(byID)
	nextIndex := 0
	var assign func(s *State) error
	assign = func(s *State) error {
		if s.ID == "" {
			return &DefinitionError{Message: "state has empty ID"}
		}
		if _, dup := states[s.ID]; dup {
			return &DefinitionError{State: s.ID, Message: "duplicate state ID"}
		}
		states[s.ID] = s
		s.docIndex = nextIndex
		nextIndex++
		for i, t := range s.Transitions {
			t.docOrder = i
			if t.Source == nil {
				t.Source = s
			}
		}
		for _, c := range s.Children {
			c.Parent = s
			if err := assign(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := assign(root); err != nil {
		return nil, err
	}

	chart := &Chart{root: root, states: states, options: o}
	if err := validateTree(chart); err != nil {
		return nil, err
	}
	return chart, nil
}

func validateTree(c *Chart) error {
	for id, s := range c.states {
		if err := validateState(c, s); err != nil {
			return fmt.Errorf("state %q: %w", id, err)
		}
	}
	if c.options.validateDisconnectedStates {
		if err := validateConnectivity(c); err != nil {
			return err
		}
	}
	return nil
}

func validateState(c *Chart, s *State) error {
	switch s.Kind {
	case Atomic:
		if len(s.Children) > 0 {
			return &DefinitionError{State: s.ID, Message: "atomic state must have no children"}
		}
	case Final:
		if len(s.Children) > 0 {
			return &DefinitionError{State: s.ID, Message: "final state must have no children"}
		}
		if len(s.Transitions) > 0 {
			return &DefinitionError{State: s.ID, Message: "final state must have no outgoing transitions"}
		}
	case Compound:
		if len(s.Children) == 0 {
			return &DefinitionError{State: s.ID, Message: "compound state requires at least one child"}
		}
		if s.InitialChild == "" {
			return &DefinitionError{State: s.ID, Message: "compound state has no initial state"}
		}
		if !hasChild(s, s.InitialChild) {
			return &DefinitionError{State: s.ID, Message: fmt.Sprintf("initial state %q is not a child", s.InitialChild)}
		}
	case Parallel:
		if len(s.Children) == 0 {
			return &DefinitionError{State: s.ID, Message: "parallel state requires at least one region"}
		}
		for _, ch := range s.Children {
			if ch.Kind.isHistory() {
				continue
			}
			if ch.Kind != Compound && ch.Kind != Parallel && ch.Kind != Atomic && ch.Kind != Final {
				return &DefinitionError{State: s.ID, Message: "parallel region child has invalid kind"}
			}
		}
	case HistoryShallow, HistoryDeep:
		if len(s.Children) > 0 {
			return &DefinitionError{State: s.ID, Message: "history pseudo-state must have no children"}
		}
		if s.HistoryDefault == "" {
			return &DefinitionError{State: s.ID, Message: "history pseudo-state requires a default target"}
		}
		if _, ok := c.states[s.HistoryDefault]; !ok {
			return &DefinitionError{State: s.ID, Message: fmt.Sprintf("history default target %q does not exist", s.HistoryDefault)}
		}
		if s.Parent == nil || !hasChild(s.Parent, s.HistoryDefault) {
			return &DefinitionError{State: s.ID, Message: "history default target must be a sibling state"}
		}
	}

	if c.options.strictStates && s.Kind != Final && !s.Kind.isHistory() && len(s.Transitions) == 0 {
		// Compound/parallel ancestors may rely purely on descendant
		// transitions; strict_states only binds atomic states, which are
		// always the true "dead ends" of a chart.
		if s.Kind == Atomic {
			return &DefinitionError{State: s.ID, Message: "strict_states: atomic state has no outgoing transitions"}
		}
	}

	for _, t := range s.Transitions {
		if err := validateTransition(c, s, t); err != nil {
			return err
		}
	}
	return nil
}

func hasChild(parent *State, id StateID) bool {
	for _, ch := range parent.Children {
		if ch.ID == id {
			return true
		}
	}
	return false
}

func validateTransition(c *Chart, s *State, t *Transition) error {
	for _, d := range t.Events {
		if d == "" {
			return &DefinitionError{State: s.ID, Message: "transition has an empty event descriptor"}
		}
	}
	if len(t.Targets) == 0 && t.Kind != Internal {
		return &DefinitionError{State: s.ID, Message: "external transition requires at least one target"}
	}
	for _, target := range t.Targets {
		if _, ok := c.states[target]; !ok {
			return &DefinitionError{State: s.ID, Message: fmt.Sprintf("transition targets unknown state %q", target)}
		}
	}
	return nil
}

// validateConnectivity requires every non-history state to be reachable
// either as a parallel region child (always entered with its parent), as
// some ancestor's default initial descendant, or as the target of some
// transition in the chart (spec.md §6, validate_disconnected_states).
func validateConnectivity(c *Chart) error {
	reachable := make(map[StateID]bool)
	reachable[c.root.ID] = true

	var markDefaultDescendants func(s *State)
	markDefaultDescendants = func(s *State) {
		switch s.Kind {
		case Compound:
			if child := c.states[s.InitialChild]; child != nil && !reachable[child.ID] {
				reachable[child.ID] = true
				markDefaultDescendants(child)
			}
		case Parallel:
			for _, child := range s.Children {
				if !reachable[child.ID] {
					reachable[child.ID] = true
					markDefaultDescendants(child)
				}
			}
		}
	}
	markDefaultDescendants(c.root)

	changed := true
	for changed {
		changed = false
		for id, s := range c.states {
			if !reachable[id] {
				continue
			}
			for _, t := range s.Transitions {
				for _, target := range t.Targets {
					if !reachable[target] {
						reachable[target] = true
						if ts := c.states[target]; ts != nil {
							markDefaultDescendants(ts)
						}
						changed = true
					}
				}
			}
		}
	}

	for id, s := range c.states {
		if s.Kind.isHistory() {
			continue
		}
		if !reachable[id] {
			return &DefinitionError{State: id, Message: "state is unreachable (validate_disconnected_states is enabled)"}
		}
	}
	return nil
}
