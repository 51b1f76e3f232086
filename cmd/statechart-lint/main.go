// Command statechart-lint loads a chart built with package builder's
// traffic-light shape, validates it, and prints its starting
// configuration — a reduced descendant of the teacher's cmd/demo and
// cmd/scxml_dowloader: no file format conversion, just construct-time
// validation feedback for a chart definition.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hsmgo/statechart"
	"github.com/hsmgo/statechart/builder"
)

func main() {
	strict := flag.Bool("strict-states", false, "reject atomic states with no outgoing transitions")
	checkConnectivity := flag.Bool("validate-disconnected-states", false, "reject states unreachable from the root")
	flag.Parse()

	var opts []statechart.Option
	if *strict {
		opts = append(opts, statechart.WithStrictStates(true))
	}
	if *checkConnectivity {
		opts = append(opts, statechart.WithValidateDisconnectedStates(true))
	}

	chart, err := builder.New("light", "red").
		State("red").On("timer", "green", nil, nil).
		State("green").On("timer", "yellow", nil, nil).
		State("yellow").On("timer", "red", nil, nil).
		Build(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chart definition error: %v\n", err)
		os.Exit(1)
	}

	ip, err := statechart.New(chart)
	if err != nil {
		fmt.Fprintf(os.Stderr, "interpreter construction error: %v\n", err)
		os.Exit(1)
	}
	if err := ip.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "start error: %v\n", err)
		os.Exit(1)
	}
	defer ip.Stop()

	fmt.Println("chart is valid")
	fmt.Println("initial configuration:", ip.Configuration())
}
