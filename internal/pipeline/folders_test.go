package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gorewood/marksync/internal/places"
	"github.com/gorewood/marksync/internal/places/placestest"
)

// flatten lists ids depth first with their depth, for compact comparison.
func flatten(nodes []*FolderNode) []int64 {
	var out []int64
	var walk func(n *FolderNode, depth int64)
	walk = func(n *FolderNode, depth int64) {
		out = append(out, depth*1000+n.ID)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}
	return out
}

func TestFolders_Sample(t *testing.T) {
	fx := placestest.Sample(t, testNow)

	tests := []struct {
		name string
		root int64
		want []int64
	}{
		// depth*1000 + id
		{"all top-level trees", 0, []int64{1, 1002, 2004, 3005, 1003, 9}},
		{"subtree", 2, []int64{2, 1004, 2005}},
		{"leaf", 3, []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Folders(context.Background(), fx.Path, tt.root)
			if err != nil {
				t.Fatalf("Folders() error = %v", err)
			}
			if got := flatten(nodes); !slices.Equal(got, tt.want) {
				t.Errorf("tree = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFolders_Titles(t *testing.T) {
	fx := placestest.Sample(t, testNow)

	nodes, err := Folders(context.Background(), fx.Path, 1)
	if err != nil {
		t.Fatalf("Folders() error = %v", err)
	}
	if nodes[0].Title != "Reading" || nodes[0].Children[0].Title != "Articles" {
		t.Errorf("titles = %q / %q", nodes[0].Title, nodes[0].Children[0].Title)
	}
}

func TestFolders_Errors(t *testing.T) {
	fx := placestest.Sample(t, testNow)

	if _, err := Folders(context.Background(), fx.Path, 100); !errors.Is(err, ErrRootNotFound) {
		t.Errorf("bookmark id as root: error = %v, want ErrRootNotFound", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.sqlite")
	if _, err := Folders(context.Background(), missing, 0); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("missing db: error = %v, want ErrSourceUnavailable", err)
	}
}

func TestBuildFolderTree_Cycle(t *testing.T) {
	rows := []places.Folder{
		{ID: 1, Parent: 3, Title: "A"},
		{ID: 2, Parent: 1, Title: "B"},
		{ID: 3, Parent: 2, Title: "C"},
		{ID: 7, Parent: 7, Title: "Self"},
	}

	nodes, err := BuildFolderTree(rows, 1)
	if err != nil {
		t.Fatalf("BuildFolderTree() error = %v", err)
	}
	if got, want := flatten(nodes), []int64{1, 1002, 2003}; !slices.Equal(got, want) {
		t.Errorf("tree = %v, want %v", got, want)
	}

	// A pure cycle has no top-level folder; only the self-parented one shows.
	nodes, err = BuildFolderTree(rows, 0)
	if err != nil {
		t.Fatalf("BuildFolderTree() error = %v", err)
	}
	if got, want := flatten(nodes), []int64{7}; !slices.Equal(got, want) {
		t.Errorf("tree = %v, want %v", got, want)
	}
}
