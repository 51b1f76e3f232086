package benchmarks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/builder"
)

func BenchmarkEventThroughput(b *testing.B) {
	var processed int64
	chart, err := builder.New("root", "idle").
		State("idle").On("tick", "idle", nil, func(ec *statechart.EvalContext) (any, error) {
		atomic.AddInt64(&processed, 1)
		return nil, nil
	}).Build()
	if err != nil {
		b.Fatal(err)
	}

	ip, err := statechart.New(chart)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer ip.Stop()

	numWorkers := 8
	eventsPerWorker := b.N / numWorkers
	if eventsPerWorker == 0 {
		eventsPerWorker = 1
	}
	var wg sync.WaitGroup
	b.ResetTimer()
	b.ReportAllocs()
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerWorker; i++ {
				ip.Send(ctx, "tick", nil)
			}
		}()
	}
	wg.Wait()
}
