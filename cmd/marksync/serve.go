package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	marksyncmcp "github.com/gorewood/marksync/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run marksync as a Model Context Protocol (MCP) server over stdio.

The configured places database, root folder, window and output path are the
defaults for every tool call. Logs go to stderr; stdout carries the protocol.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "marksync": {
        "command": "marksync",
        "args": ["serve"]
      }
    }
  }

Available tools: preview, sync, folders`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	addSyncFlags(cmd, &syncFlags{})
	_ = cmd.Flags().MarkHidden("dry-run")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The output path may be absent; only the sync tool needs it.
	if err := cfg.ValidateSource(); err != nil {
		return classifyError(err)
	}

	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // stderr sync fails on some terminals

	server := marksyncmcp.NewServer(buildVersion(), pipelineOptions(cfg), log)
	log.Info("mcp server starting")
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}
