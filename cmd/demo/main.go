// Command demo runs a red/green/yellow traffic light on a ticker for 12
// cycles, printing the configuration and persisting a snapshot to /tmp
// after every cycle. A zerolog console logger is attached to the chart
// for the interpreter's own log points; transitions themselves are
// printed, not logged.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/builder"
	"github.com/hsmgo/statechart/persist"
)

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	chart, err := builder.New("light", "red").
		State("red").On("timer", "green", nil, nil).
		State("green").On("timer", "yellow", nil, nil).
		State("yellow").On("timer", "red", nil, nil).
		Build(statechart.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	ip, err := statechart.New(chart)
	if err != nil {
		panic(err)
	}

	persister, err := persist.NewJSONPersister("/tmp")
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	if err := ip.Start(ctx); err != nil {
		panic(err)
	}
	defer ip.Stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	cycles := 0
	for {
		select {
		case <-ticker.C:
			if _, err := ip.Send(ctx, "timer", nil); err != nil {
				fmt.Printf("send error: %v\n", err)
			}
			fmt.Printf("--- cycle %d: %v ---\n", cycles+1, ip.Configuration())
			if err := persister.Save("traffic-light", ip.Snapshot()); err != nil {
				fmt.Printf("persist error: %v\n", err)
			}
			cycles++
			if cycles >= 12 {
				fmt.Println("demo complete after 12 cycles")
				return
			}
		case <-sig:
			fmt.Println("shutting down")
			return
		}
	}
}
