// Package benchmarks provides performance benchmarks for the statechart
// engine, grounded on the teacher's benchmarks package (same generator
// shapes: flat, deep/hierarchical, parallel), rebuilt against package
// builder's fluent chart constructor instead of the teacher's
// primitives.MachineConfig/MachineBuilder.
package benchmarks

import (
	"fmt"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/builder"
)

// buildFlatChart creates a chart with n atomic states cycling via "tick".
func buildFlatChart(n int) *statechart.Chart {
	if n < 2 {
		n = 2
	}
	cb := builder.New("root", "s0")
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("s%d", i)
		target := fmt.Sprintf("s%d", (i+1)%n)
		cb.State(id).On("tick", target, nil, nil)
	}
	chart, err := cb.Build()
	if err != nil {
		panic(err)
	}
	return chart
}

// buildDeepChart creates depth nested Compound states, each containing
// only the next level down, with the leaves flipping on "tick" only at
// the bottom-most level — so every Send must walk the full ancestor
// chain to find the enabled transition and recompute entry/exit sets
// down to that same depth.
func buildDeepChart(depth int) *statechart.Chart {
	if depth < 1 {
		depth = 1
	}
	c0Initial := "leaf1"
	if depth > 1 {
		c0Initial = "c1"
	}
	cb := builder.New("root", "c0")
	cur := cb.Compound("c0", c0Initial)
	for i := 1; i < depth; i++ {
		next := fmt.Sprintf("c%d", i)
		initial := "leaf1"
		if i < depth-1 {
			initial = fmt.Sprintf("c%d", i+1)
		}
		cur = cur.Compound(next, initial)
	}
	cur.Atomic("leaf1").On("tick", "leaf2", nil, nil)
	cur.Atomic("leaf2").On("tick", "leaf1", nil, nil)
	chart, err := cb.Build()
	if err != nil {
		panic(err)
	}
	return chart
}

// buildParallelChart creates a Parallel state with n independent regions,
// each a two-leaf Compound flipping on "tick".
func buildParallelChart(n int) *statechart.Chart {
	if n < 1 {
		n = 1
	}
	cb := builder.NewParallelRoot("regions")
	for i := 0; i < n; i++ {
		region := cb.Compound(fmt.Sprintf("r%d", i), "leaf1")
		region.Atomic("leaf1").On("tick", "leaf2", nil, nil)
		region.Atomic("leaf2").On("tick", "leaf1", nil, nil)
	}
	chart, err := cb.Build()
	if err != nil {
		panic(err)
	}
	return chart
}
