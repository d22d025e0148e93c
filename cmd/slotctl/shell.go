package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/joshuapare/slotkit/cmd/slotctl/logger"
	"github.com/joshuapare/slotkit/slot/table"
)

var shellCapacity int

func init() {
	cmd := newShellCmd()
	cmd.Flags().IntVarP(&shellCapacity, "capacity", "c", 8, "Number of slots")
	rootCmd.AddCommand(cmd)
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell over a table of strings",
		Long: `The shell command opens a prompt over an in-memory table whose payloads
are strings. Type 'help' at the prompt for the available commands.

Example:
  slotctl shell --capacity 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := table.New[string](shellCapacity, table.WithLogger(logger.L))
			if err != nil {
				return err
			}
			r := &REPL{tbl: tbl, out: os.Stdout}
			return r.Run()
		},
	}
}

// REPL is the interactive command loop.
type REPL struct {
	tbl   *table.Table[string]
	out   io.Writer
	liner *liner.State
}

var shellCommands = []string{
	"alloc", "release", "publish", "insert",
	"load", "get", "swap", "remove", "rm",
	"stats", "info", "help", "exit", "quit", "q",
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".slotctl_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(completeCommand)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(r.out, "slotctl shell (capacity=%d)\n", r.tbl.Cap())
	fmt.Fprintln(r.out, "Type 'help' for available commands.")
	fmt.Fprintln(r.out)

	defer r.saveHistory()

	for {
		line, err := r.liner.Prompt("slot> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nBye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		if r.exec(line) {
			fmt.Fprintln(r.out, "Bye!")
			return nil
		}
	}
}

// saveHistory persists command history to disk.
func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// completeCommand provides tab completion for commands.
func completeCommand(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

// exec runs one command line and reports whether the shell should exit.
func (r *REPL) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		return true

	case "help", "?":
		r.printHelp()

	case "alloc":
		if idx, ok := r.tbl.Alloc(); ok {
			fmt.Fprintf(r.out, "reserved %d\n", idx)
		} else {
			fmt.Fprintln(r.out, "exhausted")
		}

	case "release":
		if idx, ok := r.index(args); ok {
			r.tbl.Release(idx)
			fmt.Fprintf(r.out, "released %d\n", idx)
		}

	case "publish":
		idx, ok := r.index(args)
		if !ok {
			return false
		}
		if len(args) < 2 {
			fmt.Fprintln(r.out, "usage: publish <index> <text>")
			return false
		}
		v := strings.Join(args[1:], " ")
		if err := r.tbl.Publish(idx, &v); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(r.out, "published %d\n", idx)

	case "insert":
		if len(args) == 0 {
			fmt.Fprintln(r.out, "usage: insert <text>")
			return false
		}
		v := strings.Join(args, " ")
		idx, err := r.tbl.Insert(&v)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(r.out, "inserted %d\n", idx)

	case "load", "get":
		if idx, ok := r.index(args); ok {
			if v := r.tbl.Load(idx); v != nil {
				fmt.Fprintf(r.out, "%d: %q\n", idx, *v)
			} else {
				fmt.Fprintf(r.out, "%d: (empty)\n", idx)
			}
		}

	case "swap":
		idx, ok := r.index(args)
		if !ok {
			return false
		}
		if len(args) < 2 {
			fmt.Fprintln(r.out, "usage: swap <index> <text>")
			return false
		}
		v := strings.Join(args[1:], " ")
		old, err := r.tbl.Swap(idx, &v)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		if old != nil {
			fmt.Fprintf(r.out, "swapped %d (was %q)\n", idx, *old)
		} else {
			fmt.Fprintf(r.out, "swapped %d (was empty)\n", idx)
		}

	case "remove", "rm":
		if idx, ok := r.index(args); ok {
			if old := r.tbl.Remove(idx); old != nil {
				fmt.Fprintf(r.out, "removed %d (%q)\n", idx, *old)
			} else {
				fmt.Fprintf(r.out, "nothing at %d\n", idx)
			}
		}

	case "stats", "info":
		st := r.tbl.Stats()
		fmt.Fprintf(r.out, "capacity=%d boundary=%d free=%d in_use=%d occupied=%d reserved=%d\n",
			st.Capacity, st.Boundary, st.Free, st.InUse, st.Occupied, st.Reserved())

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

// index parses the first argument as a slot index.
func (r *REPL) index(args []string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "missing index")
		return 0, false
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "invalid index %q\n", args[0])
		return 0, false
	}
	return idx, true
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  alloc                     Reserve an index")
	fmt.Fprintln(r.out, "  release <i>               Return a reserved, unpublished index")
	fmt.Fprintln(r.out, "  publish <i> <text>        Store text into a reserved index")
	fmt.Fprintln(r.out, "  insert <text>             Reserve and publish in one step")
	fmt.Fprintln(r.out, "  load <i>                  Show the value at an index")
	fmt.Fprintln(r.out, "  swap <i> <text>           Replace the value at an index")
	fmt.Fprintln(r.out, "  remove <i>                Clear an index and free it")
	fmt.Fprintln(r.out, "  stats                     Show allocator and table counters")
	fmt.Fprintln(r.out, "  help                      Show this help")
	fmt.Fprintln(r.out, "  exit / quit / q           Exit")
}
