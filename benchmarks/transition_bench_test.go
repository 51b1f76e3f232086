package benchmarks

import (
	"context"
	"testing"

	"github.com/hsmgo/statechart"
)

func BenchmarkFlatTransition(b *testing.B) {
	chart := buildFlatChart(2)
	ip, err := statechart.New(chart)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer ip.Stop()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ip.Send(ctx, "tick", nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHierarchicalTransition(b *testing.B) {
	chart := buildDeepChart(4)
	ip, err := statechart.New(chart)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer ip.Stop()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ip.Send(ctx, "tick", nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParallelTransition(b *testing.B) {
	chart := buildParallelChart(4)
	ip, err := statechart.New(chart)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer ip.Stop()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ip.Send(ctx, "tick", nil); err != nil {
			b.Fatal(err)
		}
	}
}
