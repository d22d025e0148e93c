package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_SingleSource(t *testing.T) {
	withFlags(t, false, false, false)
	old := rootCmd.Version
	rootCmd.Version = "1.2.3"
	t.Cleanup(func() { rootCmd.Version = old })

	cmd := newVersionCmd()
	rootCmd.AddCommand(cmd)
	t.Cleanup(func() { rootCmd.RemoveCommand(cmd) })

	out, err := captureOutput(t, func() error { return cmd.RunE(cmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "slotctl 1.2.3\n")
	assert.Contains(t, out, "commit: "+commit)
}

func TestVersion_JSON(t *testing.T) {
	withFlags(t, true, false, false)

	cmd := newVersionCmd()
	rootCmd.AddCommand(cmd)
	t.Cleanup(func() { rootCmd.RemoveCommand(cmd) })

	out, err := captureOutput(t, func() error { return cmd.RunE(cmd, nil) })
	require.NoError(t, err)

	var info BuildInfo
	decodeJSON(t, out, &info)
	assert.Equal(t, BuildInfo{Version: version, Commit: commit, Built: date}, info)
}
