package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aparavi-mcp",
		Short: "Launcher and MCP server for Aparavi document processing",
		Long: `aparavi-mcp provisions a Python virtual environment, installs the
server dependencies, and runs the Aparavi MCP server with inherited stdio.

Configuration comes exclusively from environment variables; running the bare
binary is equivalent to "aparavi-mcp launch".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch()
		},
	}

	root.AddCommand(newLaunchCmd())
	root.AddCommand(newSetupCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aparavi-mcp %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
