package statechart

import (
	"context"
	"testing"
)

// buildParallelPreemptionChart builds a parallel state with two regions
// whose atomic leaves both have a transition on the same event "go", but
// one region's transition's exit set overlaps the other's (both targets
// live outside the parallel state entirely, in the shared ancestor), so
// only the document-order-earliest transition should be selected.
func buildParallelPreemptionChart(t *testing.T, fired *[]string) *Chart {
	t.Helper()
	aLeaf := &State{ID: "a_leaf", Kind: Atomic}
	aRegion := &State{ID: "a", Kind: Compound, InitialChild: "a_leaf", Children: []*State{aLeaf}}
	bLeaf := &State{ID: "b_leaf", Kind: Atomic}
	bRegion := &State{ID: "b", Kind: Compound, InitialChild: "b_leaf", Children: []*State{bLeaf}}
	parallel := &State{ID: "parallel", Kind: Parallel, Children: []*State{aRegion, bRegion}}
	outside := &State{ID: "outside", Kind: Atomic}

	aLeaf.Transitions = []*Transition{{
		Source: aLeaf, Events: []EventDescriptor{"go"}, Targets: []StateID{"outside"},
		Actions: []ActionFunc{func(ec *EvalContext) (any, error) { *fired = append(*fired, "a"); return nil, nil }},
	}}
	bLeaf.Transitions = []*Transition{{
		Source: bLeaf, Events: []EventDescriptor{"go"}, Targets: []StateID{"outside"},
		Actions: []ActionFunc{func(ec *EvalContext) (any, error) { *fired = append(*fired, "b"); return nil, nil }},
	}}

	root := &State{ID: "root", Kind: Compound, InitialChild: "parallel", Children: []*State{parallel, outside}}
	chart, err := NewChart(root)
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	return chart
}

func TestSelectTransitionsPreemptsOverlappingExitSets(t *testing.T) {
	var fired []string
	chart := buildParallelPreemptionChart(t, &fired)
	ip, err := New(chart)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ip.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := ip.Send(context.Background(), "go", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !ip.IsIn("outside") {
		t.Fatal("expected outside to be entered")
	}
	if ip.IsIn("parallel") {
		t.Fatal("expected parallel (and both its regions) to have been exited")
	}
	if len(fired) != 1 {
		t.Fatalf("fired = %v, want exactly one transition to win the exit-set conflict", fired)
	}
	if fired[0] != "a" {
		t.Errorf("winning transition = %q, want the earlier-in-document-order region 'a'", fired[0])
	}
}

func TestSelectTransitionsIndependentRegionsBothFire(t *testing.T) {
	aLeaf := &State{ID: "a_leaf", Kind: Atomic}
	aOther := &State{ID: "a_other", Kind: Atomic}
	aRegion := &State{ID: "a", Kind: Compound, InitialChild: "a_leaf", Children: []*State{aLeaf, aOther}}
	bLeaf := &State{ID: "b_leaf", Kind: Atomic}
	bOther := &State{ID: "b_other", Kind: Atomic}
	bRegion := &State{ID: "b", Kind: Compound, InitialChild: "b_leaf", Children: []*State{bLeaf, bOther}}
	parallel := &State{ID: "parallel", Kind: Parallel, Children: []*State{aRegion, bRegion}}

	aLeaf.Transitions = []*Transition{{Source: aLeaf, Events: []EventDescriptor{"go"}, Targets: []StateID{"a_other"}}}
	bLeaf.Transitions = []*Transition{{Source: bLeaf, Events: []EventDescriptor{"go"}, Targets: []StateID{"b_other"}}}

	root := &State{ID: "root", Kind: Compound, InitialChild: "parallel", Children: []*State{parallel}}
	chart, err := NewChart(root)
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	ip, err := New(chart)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ip.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := ip.Send(context.Background(), "go", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !ip.IsIn("a_other") || !ip.IsIn("b_other") {
		t.Fatalf("expected both regions to independently transition, config = %v", ip.Configuration())
	}
}
