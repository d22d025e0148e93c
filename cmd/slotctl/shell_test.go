package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slotkit/slot/table"
)

// runLines feeds lines to a fresh REPL and returns everything it printed.
func runLines(t *testing.T, capacity int, lines ...string) string {
	t.Helper()
	var buf bytes.Buffer
	r := &REPL{tbl: table.MustNew[string](capacity), out: &buf}
	for _, line := range lines {
		if r.exec(line) {
			break
		}
	}
	return buf.String()
}

func TestREPL_ReservePublishRemove(t *testing.T) {
	out := runLines(t, 2,
		"alloc",
		"load 0",
		"publish 0 hello world",
		"load 0",
		"remove 0",
		"load 0",
	)

	assert.Equal(t, strings.Join([]string{
		"reserved 0",
		"0: (empty)",
		"published 0",
		`0: "hello world"`,
		`removed 0 ("hello world")`,
		"0: (empty)",
		"",
	}, "\n"), out)
}

func TestREPL_InsertUntilExhausted(t *testing.T) {
	out := runLines(t, 2, "insert a", "insert b", "insert c", "alloc", "stats")

	assert.Contains(t, out, "inserted 0\ninserted 1\n")
	assert.Contains(t, out, "error: table: exhausted")
	assert.Contains(t, out, "exhausted\n")
	assert.Contains(t, out, "capacity=2 boundary=2 free=0 in_use=2 occupied=2 reserved=0")
}

func TestREPL_SwapAndRelease(t *testing.T) {
	out := runLines(t, 4,
		"insert one",
		"swap 0 two",
		"alloc",
		"release 1",
		"stats",
		"publish 0 three",
	)

	assert.Contains(t, out, `swapped 0 (was "one")`)
	assert.Contains(t, out, "released 1")
	assert.Contains(t, out, "boundary=1")
	assert.Contains(t, out, "error: table: entry occupied")
}

func TestREPL_BadInput(t *testing.T) {
	out := runLines(t, 1,
		"release",
		"load x",
		"publish 0",
		"insert",
		"frobnicate",
		"remove 7",
	)

	assert.Contains(t, out, "missing index")
	assert.Contains(t, out, `invalid index "x"`)
	assert.Contains(t, out, "usage: publish <index> <text>")
	assert.Contains(t, out, "usage: insert <text>")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, "nothing at 7")
}

func TestREPL_Exit(t *testing.T) {
	r := &REPL{tbl: table.MustNew[string](1), out: &bytes.Buffer{}}
	require.True(t, r.exec("quit"))
	require.True(t, r.exec("Q"))
	require.False(t, r.exec("help"))
	require.False(t, r.exec("   "))
}

func TestCompleteCommand(t *testing.T) {
	assert.Equal(t, []string{"release", "remove"}, completeCommand("re"))
	assert.Equal(t, []string{"stats"}, completeCommand("ST"))
	assert.Empty(t, completeCommand("zz"))
}
