package scxmltest

import (
	"context"
	"testing"
	"time"

	"github.com/hsmgo/statechart"
)

func buildTestChart(t *testing.T) *statechart.Chart {
	t.Helper()
	a := &statechart.State{ID: "a", Kind: statechart.Atomic}
	b := &statechart.State{ID: "b", Kind: statechart.Atomic}
	a.Transitions = []*statechart.Transition{{
		Source: a, Events: []statechart.EventDescriptor{"go"}, Targets: []statechart.StateID{"b"},
	}}
	root := &statechart.State{ID: "root", Kind: statechart.Compound, InitialChild: "a", Children: []*statechart.State{a, b}}
	chart, err := statechart.NewChart(root)
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	return chart
}

// runCommonScenario exercises the same scenario against any RuntimeAdapter,
// mirroring the teacher's RunCommonTests helper shared across its
// event-driven and tick-based runtimes.
func runCommonScenario(t *testing.T, adapter RuntimeAdapter) {
	t.Helper()
	ctx := context.Background()
	if err := adapter.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer adapter.Stop()

	if !adapter.IsIn("a") {
		t.Fatalf("expected initial state a, config = %v", adapter.Configuration())
	}

	if err := adapter.SendEvent(ctx, "go", nil); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}
	if err := adapter.WaitForStability(time.Second); err != nil {
		t.Fatalf("WaitForStability: %v", err)
	}

	if !adapter.IsIn("b") {
		t.Fatalf("expected b after go, config = %v", adapter.Configuration())
	}
}

func TestSyncAdapterCommonScenario(t *testing.T) {
	chart := buildTestChart(t)
	adapter, err := NewSyncAdapter(chart)
	if err != nil {
		t.Fatalf("NewSyncAdapter: %v", err)
	}
	runCommonScenario(t, adapter)
}

func TestAsyncAdapterCommonScenario(t *testing.T) {
	chart := buildTestChart(t)
	adapter, err := NewAsyncAdapter(chart)
	if err != nil {
		t.Fatalf("NewAsyncAdapter: %v", err)
	}
	runCommonScenario(t, adapter)
}
