// Package async provides a cooperative variant of statechart.Interpreter's
// public surface: the selector and executor are the same underlying code
// (statechart.Interpreter is embedded, not reimplemented), and the only
// difference is where the caller yields (spec.md §5 "A cooperative (async)
// variant is supported: its only difference is that the macrostep yields
// at pop_external_blocking and at await-marked callbacks").
//
// Go has no stackful coroutines, so "yield" here means: events are
// delivered to a single worker goroutine over a channel, and SendAsync
// returns a Future the caller awaits (a channel receive, the natural Go
// suspension point) instead of blocking the calling goroutine, adapted
// from the teacher's realtime.RealtimeRuntime embedding pattern.
package async

import (
	"context"

	"github.com/hsmgo/statechart"
)

// Result is the outcome of one SendAsync call.
type Result struct {
	Values []any
	Err    error
}

// Future resolves once its event has been macrostepped by the worker
// goroutine.
type Future struct {
	done chan Result
}

// Wait blocks (yields) until the result is available or ctx is done. A ctx
// that is already done when Wait is called is reported even if the result
// is ready.
func (f *Future) Wait(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case r := <-f.done:
		return r.Values, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type job struct {
	name EventName
	data any
	out  chan Result
}

// EventName is re-exported for callers that don't also import the core
// package directly.
type EventName = statechart.EventName

// Interpreter runs a *statechart.Interpreter on a dedicated worker
// goroutine: every SendAsync is serialized through a channel, so the
// embedded Interpreter's own mutex is never contended across goroutines.
type Interpreter struct {
	*statechart.Interpreter

	jobs   chan job
	cancel context.CancelFunc
}

// New wraps chart in a cooperative Interpreter. The worker goroutine is
// started immediately; call Stop to shut it down.
func New(chart *statechart.Chart) (*Interpreter, error) {
	inner, err := statechart.New(chart)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	ip := &Interpreter{
		Interpreter: inner,
		jobs:        make(chan job, 64),
		cancel:      cancel,
	}
	go ip.loop(ctx)
	return ip, nil
}

func (ip *Interpreter) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ip.jobs:
			values, err := ip.Interpreter.Send(ctx, j.name, j.data)
			j.out <- Result{Values: values, Err: err}
		}
	}
}

// SendAsync enqueues an event for the worker goroutine and returns
// immediately with a Future; the caller yields by calling Future.Wait.
func (ip *Interpreter) SendAsync(name statechart.EventName, data any) *Future {
	out := make(chan Result, 1)
	ip.jobs <- job{name: name, data: data, out: out}
	return &Future{done: out}
}

// Stop halts the worker goroutine in addition to the embedded
// Interpreter's own Stop.
func (ip *Interpreter) Stop() {
	ip.cancel()
	ip.Interpreter.Stop()
}
