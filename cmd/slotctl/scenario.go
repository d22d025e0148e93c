package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slotkit/cmd/slotctl/logger"
	"github.com/joshuapare/slotkit/slot/alloc"
)

var scenarioCapacity int

func init() {
	cmd := newScenarioCmd()
	cmd.Flags().IntVarP(&scenarioCapacity, "capacity", "c", 3, "Number of slots")
	rootCmd.AddCommand(cmd)
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Replay the canonical allocate/release scenario",
		Long: `The scenario command fills an allocator, reuses a hole in the middle,
releases everything top-first so the boundary collapses back to zero, and
fills it again. Every step prints the returned index and the resulting
boundary and holes.

Example:
  slotctl scenario
  slotctl scenario --capacity 8 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(scenarioCapacity)
		},
	}
}

// ScenarioStep is one operation of a scenario run and the state after it.
type ScenarioStep struct {
	Op       string `json:"op"`
	Index    int    `json:"index"`
	OK       bool   `json:"ok"`
	Boundary int    `json:"boundary"`
	Holes    []int  `json:"holes"`
}

func runScenario(capacity int) error {
	steps, err := scenarioSteps(capacity)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(steps)
	}

	for i, s := range steps {
		switch {
		case s.Op == "alloc" && s.OK:
			printInfo("%3d  alloc      -> %v", i+1, s.Index)
		case s.Op == "alloc":
			printInfo("%3d  alloc      -> exhausted", i+1)
		default:
			printInfo("%3d  release %v", i+1, s.Index)
		}
		printVerbose("\tboundary=%v holes=%v", s.Boundary, s.Holes)
		printInfo("\n")
	}
	last := steps[len(steps)-1]
	printInfo("final: boundary=%v holes=%v\n", last.Boundary, last.Holes)
	return nil
}

// scenarioSteps runs the scenario against a fresh allocator. For capacity
// 3 the release order is 1, 2, 0, 1.
func scenarioSteps(capacity int) ([]ScenarioStep, error) {
	if capacity < 3 {
		return nil, fmt.Errorf("capacity must be at least 3, got %d", capacity)
	}
	a, err := alloc.New(capacity, alloc.WithLogger(logger.L))
	if err != nil {
		return nil, err
	}

	var steps []ScenarioStep
	record := func(op string, idx int, ok bool) {
		steps = append(steps, ScenarioStep{
			Op:       op,
			Index:    idx,
			OK:       ok,
			Boundary: a.Boundary(),
			Holes:    a.Holes(),
		})
	}
	allocate := func() {
		idx, ok := a.Alloc()
		record("alloc", idx, ok)
	}
	release := func(idx int) {
		a.Release(idx)
		record("release", idx, true)
	}

	for range capacity + 1 {
		allocate()
	}

	mid := capacity / 2
	release(mid)
	allocate()

	release(capacity - 1)
	release(0)
	for i := 1; i < capacity-1; i++ {
		release(i)
	}

	for range capacity {
		allocate()
	}

	logger.L.Info("scenario finished", "capacity", capacity, "steps", len(steps))
	return steps, nil
}
