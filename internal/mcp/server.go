// Package mcp provides a Model Context Protocol server for marksync.
// It exposes bookmark preview, sync and folder listing as MCP tools so an
// agent can refresh a site's bookmark data file.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/marksync/internal/logger"
	"github.com/gorewood/marksync/internal/pipeline"
)

// NewServer creates an MCP server with all marksync tools registered.
// defaults supplies the places database, root folder, output path and window
// used when a tool call leaves them unset.
func NewServer(version string, defaults pipeline.Options, log logger.Logger) *mcp.Server {
	if log == nil {
		log = logger.NewNop()
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "marksync",
		Version: version,
	}, nil)
	registerTools(server, defaults, log)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that only read a snapshot.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for sync, which replaces the output
// file with identical content for identical input.
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(true),
		IdempotentHint:  true,
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, defaults pipeline.Options, log logger.Logger) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview",
		Description: "List the bookmarks a sync would export: title, url, date (YYYY-MM-DD) and category, newest first. Nothing is written.",
		Annotations: readOnlyAnnotations(),
	}, handlePreview(defaults, log))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync",
		Description: "Export recent bookmarks from the configured root folder to the site's data file, replacing it atomically.",
		Annotations: writeAnnotations(),
	}, handleSync(defaults, log))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "folders",
		Description: "List bookmark folders with their ids and depth, to find the id of a root folder.",
		Annotations: readOnlyAnnotations(),
	}, handleFolders(defaults))
}
