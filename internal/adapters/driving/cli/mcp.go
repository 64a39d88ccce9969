package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/mcp"
	"github.com/custodia-labs/imgscout/internal/logger"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
images and manage comments.

Tools:
  search_images  {query, page}
  add_comment    {image_id, text}
  get_comment    {image_id}

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode
  imgscout mcp

  # HTTP mode (for MCP Inspector, remote access)
  imgscout mcp --http :8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "imgscout": {
        "command": "/path/to/imgscout",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Repository: svc.Repository,
		Settings:   svc.Settings,
	}
	if svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			ports.ImageBaseURL = settings.Catalog.ImageBaseURL
		}
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	logger.SetTimestamps(true)
	stop := startBackground(cmd.Context(), svc)
	defer stop()

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
