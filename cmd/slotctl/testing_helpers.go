package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe and block fn.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// withFlags sets the global output flags for the duration of a test.
func withFlags(t *testing.T, json, verb, q bool) {
	t.Helper()
	oldJSON, oldVerbose, oldQuiet := jsonOut, verbose, quiet
	jsonOut, verbose, quiet = json, verb, q
	t.Cleanup(func() {
		jsonOut, verbose, quiet = oldJSON, oldVerbose, oldQuiet
	})
}

// decodeJSON unmarshals captured output into v.
func decodeJSON(t *testing.T, output string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}
