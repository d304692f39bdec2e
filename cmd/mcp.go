package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/mcpserver"
)

// mcpCmd serves the reminder tools to MCP clients.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve reminder tools over MCP (stdio)",
	Long: `Run a Model Context Protocol server on stdin/stdout so assistants can
list, add and delete reminders and manage the library.

Register it with your MCP client as:
  {"command": "watchout", "args": ["mcp"]}

Start the daemon first so reminders added here fire on schedule.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	return mcpserver.NewServer(ctrl, Version).ServeStdio()
}
