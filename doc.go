// Package statechart is a hierarchical state machine (statechart) interpreter
// conforming to the SCXML semantic model: atomic, compound, parallel, final,
// and history pseudo-states, driven by a run-to-completion event loop.
//
// A host program builds a chart once (see package builder, or assemble State
// and Transition values directly) and drives it with an Interpreter:
//
//	chart, err := builder.New("light", "green").
//		State("green").On("cycle", "yellow", nil, nil).
//		State("yellow").On("cycle", "red", nil, nil).
//		State("red").On("cycle", "green", nil, nil).
//		Build()
//	interp, err := statechart.New(chart)
//	interp.Start(ctx)
//	interp.Send(ctx, "cycle", nil)
//	interp.Configuration() // => [light yellow]
//
// The interpreter is single-threaded and cooperative: callbacks run on the
// goroutine that calls Start/Send, and a re-entrant Send from inside a
// callback is queued rather than recursed into (run-to-completion, §4.5).
// Package statechart/async provides a variant of the same public surface
// that yields at queue waits instead of blocking.
package statechart
