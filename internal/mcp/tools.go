package mcp

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/marksync/internal/config"
	"github.com/gorewood/marksync/internal/export"
	"github.com/gorewood/marksync/internal/logger"
	"github.com/gorewood/marksync/internal/pipeline"
)

// --- Shared scope ---

// scope narrows a run. Zero values fall back to the server defaults.
type scope struct {
	RootFolderID int64
	WindowDays   int
}

func (s scope) validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.RootFolderID, validation.Min(0)),
		validation.Field(&s.WindowDays, validation.Min(0), validation.Max(config.MaxWindowDays)),
	)
}

func (s scope) apply(defaults pipeline.Options) pipeline.Options {
	opts := defaults
	if s.RootFolderID != 0 {
		opts.RootFolderID = s.RootFolderID
	}
	if s.WindowDays != 0 {
		opts.WindowDays = s.WindowDays
	}
	return opts
}

// --- Preview tool ---

// PreviewInput is the input for the preview tool.
type PreviewInput struct {
	RootFolderID int64 `json:"root_folder_id,omitempty" jsonschema:"folder id to export from; defaults to the configured root"`
	WindowDays   int   `json:"window_days,omitempty"    jsonschema:"only bookmarks added in the last N days; defaults to the configured window"`
	Limit        int   `json:"limit,omitempty"          jsonschema:"return at most this many entries; 0 returns all"`
}

// PreviewOutput is the output for the preview tool.
type PreviewOutput struct {
	RunID   string         `json:"run_id"  jsonschema:"identifier of this run, also present in logs"`
	Count   int            `json:"count"   jsonschema:"number of bookmarks in the window"`
	Cutoff  string         `json:"cutoff"  jsonschema:"earliest creation time included (RFC3339)"`
	Entries []export.Entry `json:"entries" jsonschema:"exported entries, newest first"`
}

func handlePreview(defaults pipeline.Options, log logger.Logger) mcp.ToolHandlerFor[PreviewInput, PreviewOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PreviewInput) (*mcp.CallToolResult, PreviewOutput, error) {
		sc := scope{RootFolderID: input.RootFolderID, WindowDays: input.WindowDays}
		if err := sc.validate(); err != nil {
			return nil, PreviewOutput{}, err
		}
		if input.Limit < 0 {
			return nil, PreviewOutput{}, errors.New("limit must not be negative")
		}

		result, err := pipeline.Collect(ctx, sc.apply(defaults), log)
		if err != nil {
			return nil, PreviewOutput{}, err
		}

		entries := result.Entries
		if input.Limit > 0 && len(entries) > input.Limit {
			entries = entries[:input.Limit]
		}
		return nil, PreviewOutput{
			RunID:   result.RunID,
			Count:   len(result.Entries),
			Cutoff:  result.Cutoff.Format(time.RFC3339),
			Entries: entries,
		}, nil
	}
}

// --- Sync tool ---

// SyncInput is the input for the sync tool. The output path is fixed by the
// server configuration.
type SyncInput struct {
	RootFolderID int64 `json:"root_folder_id,omitempty" jsonschema:"folder id to export from; defaults to the configured root"`
	WindowDays   int   `json:"window_days,omitempty"    jsonschema:"only bookmarks added in the last N days; defaults to the configured window"`
}

// SyncOutput is the output for the sync tool.
type SyncOutput struct {
	RunID  string `json:"run_id" jsonschema:"identifier of this run, also present in logs"`
	Count  int    `json:"count"  jsonschema:"number of bookmarks written"`
	Output string `json:"output" jsonschema:"path of the data file that was replaced"`
}

func handleSync(defaults pipeline.Options, log logger.Logger) mcp.ToolHandlerFor[SyncInput, SyncOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
		sc := scope{RootFolderID: input.RootFolderID, WindowDays: input.WindowDays}
		if err := sc.validate(); err != nil {
			return nil, SyncOutput{}, err
		}

		result, err := pipeline.Sync(ctx, sc.apply(defaults), log)
		if err != nil {
			return nil, SyncOutput{}, err
		}
		return nil, SyncOutput{
			RunID:  result.RunID,
			Count:  len(result.Entries),
			Output: result.OutputPath,
		}, nil
	}
}

// --- Folders tool ---

// FoldersInput is the input for the folders tool.
type FoldersInput struct {
	RootFolderID int64 `json:"root_folder_id,omitempty" jsonschema:"list only this folder's subtree; 0 lists every folder"`
}

// FolderInfo is one folder in depth-first order.
type FolderInfo struct {
	ID     int64  `json:"id"     jsonschema:"folder id, usable as root_folder_id"`
	Title  string `json:"title"  jsonschema:"folder title"`
	Parent int64  `json:"parent" jsonschema:"parent folder id; 0 for each listed root"`
	Depth  int    `json:"depth"  jsonschema:"nesting depth below the listed root"`
}

// FoldersOutput is the output for the folders tool.
type FoldersOutput struct {
	Folders []FolderInfo `json:"folders" jsonschema:"folders in depth-first order"`
}

func handleFolders(defaults pipeline.Options) mcp.ToolHandlerFor[FoldersInput, FoldersOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FoldersInput) (*mcp.CallToolResult, FoldersOutput, error) {
		if input.RootFolderID < 0 {
			return nil, FoldersOutput{}, errors.New("root_folder_id must not be negative")
		}

		nodes, err := pipeline.Folders(ctx, defaults.PlacesPath, input.RootFolderID)
		if err != nil {
			return nil, FoldersOutput{}, err
		}
		return nil, FoldersOutput{Folders: flattenFolders(nodes)}, nil
	}
}

// flattenFolders lists the tree depth first. The tool schema cannot describe
// a recursive type.
func flattenFolders(nodes []*pipeline.FolderNode) []FolderInfo {
	out := []FolderInfo{}
	var walk func(n *pipeline.FolderNode, parent int64, depth int)
	walk = func(n *pipeline.FolderNode, parent int64, depth int) {
		out = append(out, FolderInfo{ID: n.ID, Title: n.Title, Parent: parent, Depth: depth})
		for _, child := range n.Children {
			walk(child, n.ID, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0, 0)
	}
	return out
}
