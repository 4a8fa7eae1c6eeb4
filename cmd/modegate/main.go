// Command modegate is an MCP stdio server that exposes mode-gated task
// orchestration to an MCP client over newline-delimited JSON-RPC on
// stdin/stdout.
//
// Configuration is resolved in precedence order: flags > environment
// (ROO_* prefix) > YAML config file > defaults. See internal/config for
// details.
//
// Usage:
//
//	modegate serve
//	modegate serve --project-root /path/to/project --log-level debug
//	modegate version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "modegate",
		Short: "Mode-gated task orchestration over MCP stdio",
	}

	// serve is the default action: running bare `modegate` with no
	// subcommand starts the server, same as `modegate serve`.
	attachServeFlags(root)

	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("modegate\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
			return nil
		},
	}
}
