package cmd

import (
	"github.com/spf13/cobra"
)

// mcpCmd is kept as an explicit alias for the default command: some MCP
// clients configure a server by subcommand name rather than bare invocation.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio (alias for the default command)",
	Run:   runServe,
}
