package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemolabs/mnemo/cmd/mnemo/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server exposing the analysis session as tools",
	Long: `Start an MCP (Model Context Protocol) server over stdio exposing
analyze_documents, send_message, get_session, and reset_session tools.

Configure in an MCP client's config file:
  {
    "mcpServers": {
      "mnemo": {
        "command": "mnemo",
        "args": ["mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	noNarration = true // Headless server; speech has no listener.

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := mcp.StartServer(a.orch); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
