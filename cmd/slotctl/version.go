package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo is the JSON form of the version command.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := BuildInfo{Version: cmd.Root().Version, Commit: commit, Built: date}
			if jsonOut {
				return printJSON(info)
			}
			fmt.Printf("%s %s\n", cmd.Root().Name(), info.Version)
			fmt.Printf("  commit: %s\n", info.Commit)
			fmt.Printf("  built: %s\n", info.Built)
			return nil
		},
	}
}
