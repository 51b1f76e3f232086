package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/async"
	"github.com/hsmgo/statechart/builder"
)

func buildTrafficLight(t *testing.T) *statechart.Chart {
	t.Helper()
	chart, err := builder.New("light", "green").
		State("green").On("cycle", "yellow", nil, nil).
		State("yellow").On("cycle", "red", nil, nil).
		State("red").On("cycle", "green", nil, nil).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return chart
}

func TestAsyncSendAsyncFutureWait(t *testing.T) {
	chart := buildTrafficLight(t)
	ip, err := async.New(chart)
	if err != nil {
		t.Fatalf("async.New: %v", err)
	}
	defer ip.Stop()

	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	future := ip.SendAsync("cycle", nil)
	if _, err := future.Wait(ctx); err != nil {
		t.Fatalf("Future.Wait: %v", err)
	}
	if !ip.IsIn("yellow") {
		t.Fatal("expected yellow after the async cycle resolves")
	}
}

func TestAsyncSerializesConcurrentSends(t *testing.T) {
	chart := buildTrafficLight(t)
	ip, err := async.New(chart)
	if err != nil {
		t.Fatalf("async.New: %v", err)
	}
	defer ip.Stop()

	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	futures := make([]*async.Future, 3)
	for i := range futures {
		futures[i] = ip.SendAsync("cycle", nil)
	}
	for _, f := range futures {
		if _, err := f.Wait(ctx); err != nil {
			t.Fatalf("Future.Wait: %v", err)
		}
	}
	if !ip.IsIn("green") {
		t.Fatal("three cycles should return to green")
	}
}

func TestAsyncFutureWaitRespectsContextCancellation(t *testing.T) {
	chart := buildTrafficLight(t)
	ip, err := async.New(chart)
	if err != nil {
		t.Fatalf("async.New: %v", err)
	}
	defer ip.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)

	if err := ip.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f := ip.SendAsync("cycle", nil)
	if _, err := f.Wait(ctx); err == nil {
		t.Fatal("expected Wait to observe the already-expired context")
	}
}
