package statechart

import "testing"

func TestTransitionScopeInternalCompoundSelfStaysAtSource(t *testing.T) {
	chart := buildCompoundChart(t)
	editor := chart.State("editor")
	source := chart.State("source")
	transition := &Transition{Source: editor, Kind: Internal, Targets: []StateID{"source"}}
	scope := transitionScope(chart, transition)
	if scope != editor {
		t.Fatalf("scope = %v, want editor (internal transition into own descendant)", scope)
	}
	_ = source
}

func TestTransitionScopeExternalSelfTransitionExitsSource(t *testing.T) {
	chart := buildSimpleChart(t)
	green := chart.State("green")
	transition := &Transition{Source: green, Kind: External, Targets: []StateID{"green"}}
	scope := transitionScope(chart, transition)
	if scope == green {
		t.Fatal("an external self-transition's domain must be a proper ancestor of the source, not the source itself")
	}
	if scope != chart.Root() {
		t.Fatalf("scope = %v, want root", scope)
	}
}

func TestTransitionScopeSelfTransitionEntriesDisabled(t *testing.T) {
	green := &State{ID: "green", Kind: Atomic}
	root := &State{ID: "light", Kind: Compound, InitialChild: "green", Children: []*State{green}}
	chart, err := NewChart(root, WithSelfTransitionEntries(false))
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	transition := &Transition{Source: chart.State("green"), Kind: External, Targets: []StateID{"green"}}
	if scope := transitionScope(chart, transition); scope != nil {
		t.Fatalf("scope = %v, want nil (self-transition entries disabled)", scope)
	}
}

func TestComputeEntrySetResolvesHistoryDefaultWhenUnrecorded(t *testing.T) {
	chart := buildCompoundChart(t)
	cfg := newConfiguration(chart)
	cfg.add(chart.root)

	hist := chart.State("h")
	transition := &Transition{Source: chart.root, Kind: External, Targets: []StateID{"h"}}
	entry := computeEntrySet(chart, cfg, []*Transition{transition})

	foundSource := false
	for _, s := range entry {
		if s.ID == "source" {
			foundSource = true
		}
		if s.Kind.isHistory() {
			t.Errorf("entry set must never contain a history pseudo-state, got %v", s.ID)
		}
	}
	if !foundSource {
		t.Fatalf("entry = %v, want to contain source (the history's default target)", entry)
	}
	_ = hist
}

func TestComputeExitSetOrderIsReverseDocumentOrder(t *testing.T) {
	chart := buildCompoundChart(t)
	cfg := newConfiguration(chart)
	editor := chart.State("editor")
	source := chart.State("source")
	cfg.add(chart.root)
	cfg.add(editor)
	cfg.add(source)

	transition := &Transition{Source: editor, Kind: External, Targets: []StateID{"settings"}}
	exit := computeExitSet(chart, cfg, []*Transition{transition})
	if len(exit) != 2 {
		t.Fatalf("exit = %v, want [source editor]", exit)
	}
	if exit[0].ID != "source" || exit[1].ID != "editor" {
		t.Fatalf("exit = %v, want children before parents", exit)
	}
}
