package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/marksync/internal/pipeline"
	"github.com/gorewood/marksync/internal/places/placestest"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// --- Test helpers ---

func sampleDefaults(t *testing.T) pipeline.Options {
	t.Helper()
	fx := placestest.Sample(t, testNow)
	return pipeline.Options{
		PlacesPath:   fx.Path,
		RootFolderID: 1,
		OutputPath:   filepath.Join(t.TempDir(), "bookmarks.yml"),
		WindowDays:   90,
		Now:          func() time.Time { return testNow },
	}
}

// --- Preview handler tests ---

func TestHandlePreview_Defaults(t *testing.T) {
	defaults := sampleDefaults(t)
	handler := handlePreview(defaults, nil)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, PreviewInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 4 || len(out.Entries) != 4 {
		t.Errorf("Count = %d, len(Entries) = %d, want 4", out.Count, len(out.Entries))
	}
	if out.Entries[0].Title != "Nested" {
		t.Errorf("first entry = %q, want newest (Nested)", out.Entries[0].Title)
	}
	if out.RunID == "" || out.Cutoff == "" {
		t.Errorf("RunID = %q, Cutoff = %q, want both set", out.RunID, out.Cutoff)
	}
	if _, err := os.Stat(defaults.OutputPath); !os.IsNotExist(err) {
		t.Errorf("preview must not write the output file: %v", err)
	}
}

func TestHandlePreview_Overrides(t *testing.T) {
	handler := handlePreview(sampleDefaults(t), nil)

	tests := []struct {
		name      string
		input     PreviewInput
		wantCount int
		wantLen   int
	}{
		{"narrower window", PreviewInput{WindowDays: 20}, 2, 2},
		{"other root", PreviewInput{RootFolderID: 9}, 1, 1},
		{"limit keeps total count", PreviewInput{Limit: 1}, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Count != tt.wantCount || len(out.Entries) != tt.wantLen {
				t.Errorf("Count = %d, len = %d, want %d, %d", out.Count, len(out.Entries), tt.wantCount, tt.wantLen)
			}
		})
	}
}

func TestHandlePreview_InvalidInput(t *testing.T) {
	handler := handlePreview(sampleDefaults(t), nil)

	for _, input := range []PreviewInput{
		{WindowDays: -1},
		{WindowDays: 100000},
		{RootFolderID: -5},
		{Limit: -1},
	} {
		if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, input); err == nil {
			t.Errorf("input %+v: expected error, got nil", input)
		}
	}
}

func TestHandlePreview_UnknownRoot(t *testing.T) {
	handler := handlePreview(sampleDefaults(t), nil)

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, PreviewInput{RootFolderID: 777})
	if !errors.Is(err, pipeline.ErrRootNotFound) {
		t.Errorf("error = %v, want ErrRootNotFound", err)
	}
}

// --- Sync handler tests ---

func TestHandleSync_WritesOutput(t *testing.T) {
	defaults := sampleDefaults(t)
	handler := handleSync(defaults, nil)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SyncInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 4 || out.Output != defaults.OutputPath {
		t.Errorf("out = %+v", out)
	}
	if _, err := os.Stat(defaults.OutputPath); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestHandleSync_NoOutputConfigured(t *testing.T) {
	defaults := sampleDefaults(t)
	defaults.OutputPath = ""
	handler := handleSync(defaults, nil)

	if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, SyncInput{}); err == nil {
		t.Error("expected error without an output path, got nil")
	}
}

// --- Folders handler tests ---

func TestHandleFolders(t *testing.T) {
	handler := handleFolders(sampleDefaults(t))

	tests := []struct {
		name string
		root int64
		want []int64
	}{
		{"all", 0, []int64{1, 2, 4, 5, 3, 9}},
		{"subtree", 2, []int64{2, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, FoldersInput{RootFolderID: tt.root})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ids []int64
			for _, f := range out.Folders {
				ids = append(ids, f.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestFlattenFolders_DepthAndParent(t *testing.T) {
	nodes := []*pipeline.FolderNode{{
		ID: 1, Title: "Reading",
		Children: []*pipeline.FolderNode{{ID: 2, Title: "Articles"}},
	}}

	got := flattenFolders(nodes)
	want := []FolderInfo{
		{ID: 1, Title: "Reading", Parent: 0, Depth: 0},
		{ID: 2, Title: "Articles", Parent: 1, Depth: 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("flattenFolders() = %+v, want %+v", got, want)
	}
}

// --- Server registration test ---

func TestNewServer_RegistersTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer("test-version", sampleDefaults(t), nil)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close() //nolint:errcheck

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close() //nolint:errcheck

	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	slices.Sort(names)
	if want := []string{"folders", "preview", "sync"}; !slices.Equal(names, want) {
		t.Errorf("tools = %v, want %v", names, want)
	}
}
