package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioSteps_Capacity3(t *testing.T) {
	steps, err := scenarioSteps(3)
	require.NoError(t, err)

	type op struct {
		Op    string
		Index int
		OK    bool
	}
	var got []op
	for _, s := range steps {
		got = append(got, op{s.Op, s.Index, s.OK})
	}

	want := []op{
		{"alloc", 0, true},
		{"alloc", 1, true},
		{"alloc", 2, true},
		{"alloc", 0, false},
		{"release", 1, true},
		{"alloc", 1, true},
		{"release", 2, true},
		{"release", 0, true},
		{"release", 1, true},
		{"alloc", 0, true},
		{"alloc", 1, true},
		{"alloc", 2, true},
	}
	assert.Equal(t, want, got)

	// After releasing 2 and 0 with 1 still held, 0 is a hole below boundary 2.
	assert.Equal(t, 2, steps[7].Boundary)
	assert.Equal(t, []int{0}, steps[7].Holes)
	// Releasing 1 collapses the boundary to zero.
	assert.Equal(t, 0, steps[8].Boundary)
	assert.Empty(t, steps[8].Holes)
}

func TestScenarioSteps_TooSmall(t *testing.T) {
	_, err := scenarioSteps(2)
	assert.Error(t, err)
}

func TestScenarioSteps_LargerCapacity(t *testing.T) {
	steps, err := scenarioSteps(8)
	require.NoError(t, err)

	last := steps[len(steps)-1]
	assert.Equal(t, 8, last.Boundary)
	assert.Empty(t, last.Holes)

	for _, s := range steps {
		for _, h := range s.Holes {
			assert.Less(t, h, s.Boundary-1)
		}
	}
}

func TestRunScenario_Human(t *testing.T) {
	withFlags(t, false, true, false)

	out, err := captureOutput(t, func() error { return runScenario(3) })
	require.NoError(t, err)

	assert.Contains(t, out, "alloc      -> exhausted")
	assert.Contains(t, out, "boundary=2 holes=[0]")
	assert.True(t, strings.HasSuffix(out, "final: boundary=3 holes=[]\n"), "got:\n%s", out)
}

func TestRunScenario_JSON(t *testing.T) {
	withFlags(t, true, false, false)

	out, err := captureOutput(t, func() error { return runScenario(3) })
	require.NoError(t, err)

	var steps []ScenarioStep
	decodeJSON(t, out, &steps)
	require.Len(t, steps, 12)
	assert.False(t, steps[3].OK)
}
