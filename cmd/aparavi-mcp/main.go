// aparavi-mcp launches the Python Aparavi MCP server after provisioning its
// virtual environment, or serves the MCP tools natively over stdio.
package main

import (
	"log"
	"os"
)

// Version information, injected via ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Stdout belongs to the child process or the JSON-RPC stream.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if err := newRootCmd().Execute(); err != nil {
		log.Printf("aparavi-mcp: %v", err)
		os.Exit(1)
	}
}
