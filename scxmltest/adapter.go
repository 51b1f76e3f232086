// Package scxmltest provides a common adapter interface over the
// synchronous statechart.Interpreter and the cooperative async.Interpreter,
// so the same scenario-level test logic can run against both without
// duplicating it per runtime (adapted from the teacher's
// testutil.RuntimeAdapter, which did the same for its event-driven and
// tick-based runtimes).
package scxmltest

import (
	"context"
	"time"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/async"
)

// RuntimeAdapter is the common surface both runtime flavors expose.
type RuntimeAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	SendEvent(ctx context.Context, name statechart.EventName, data any) error
	IsIn(id statechart.StateID) bool
	Configuration() []statechart.StateID
	WaitForStability(timeout time.Duration) error
}

// SyncAdapter wraps the synchronous Interpreter, whose Send already runs
// the macrostep to completion before returning.
type SyncAdapter struct {
	ip *statechart.Interpreter
}

// NewSyncAdapter wraps an already-constructed Chart in a synchronous
// Interpreter.
func NewSyncAdapter(chart *statechart.Chart) (*SyncAdapter, error) {
	ip, err := statechart.New(chart)
	if err != nil {
		return nil, err
	}
	return &SyncAdapter{ip: ip}, nil
}

func (a *SyncAdapter) Start(ctx context.Context) error { return a.ip.Start(ctx) }

func (a *SyncAdapter) Stop() error {
	a.ip.Stop()
	return nil
}

func (a *SyncAdapter) SendEvent(ctx context.Context, name statechart.EventName, data any) error {
	_, err := a.ip.Send(ctx, name, data)
	return err
}

func (a *SyncAdapter) IsIn(id statechart.StateID) bool { return a.ip.IsIn(id) }

func (a *SyncAdapter) Configuration() []statechart.StateID { return a.ip.Configuration() }

// WaitForStability is a no-op: Send already ran the full macrostep
// synchronously before returning.
func (a *SyncAdapter) WaitForStability(timeout time.Duration) error { return nil }

// AsyncAdapter wraps the cooperative async.Interpreter, whose SendAsync
// hands off to a worker goroutine and returns a Future.
type AsyncAdapter struct {
	ip *async.Interpreter
}

// NewAsyncAdapter wraps an already-constructed Chart in a cooperative
// Interpreter with its worker goroutine running.
func NewAsyncAdapter(chart *statechart.Chart) (*AsyncAdapter, error) {
	ip, err := async.New(chart)
	if err != nil {
		return nil, err
	}
	return &AsyncAdapter{ip: ip}, nil
}

func (a *AsyncAdapter) Start(ctx context.Context) error { return a.ip.Start(ctx) }

func (a *AsyncAdapter) Stop() error {
	a.ip.Stop()
	return nil
}

func (a *AsyncAdapter) SendEvent(ctx context.Context, name statechart.EventName, data any) error {
	_, err := a.ip.SendAsync(name, data).Wait(ctx)
	return err
}

func (a *AsyncAdapter) IsIn(id statechart.StateID) bool { return a.ip.IsIn(id) }

func (a *AsyncAdapter) Configuration() []statechart.StateID { return a.ip.Configuration() }

// WaitForStability blocks until the worker goroutine's job channel has had
// time to drain a just-sent event; SendEvent already waits on the Future
// it gets back, so this is only useful after fire-and-forget SendAsync
// calls made outside SendEvent.
func (a *AsyncAdapter) WaitForStability(timeout time.Duration) error {
	time.Sleep(5 * time.Millisecond)
	return nil
}
