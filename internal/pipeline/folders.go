package pipeline

import (
	"context"
	"fmt"

	"github.com/gorewood/marksync/internal/places"
	"github.com/gorewood/marksync/internal/snapshot"
)

// FolderNode is a folder and the folders beneath it.
type FolderNode struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Children []*FolderNode `json:"children,omitempty"`
}

// Folders returns the folder tree of the database at placesPath. With a
// rootID of 0 every top-level folder is returned; otherwise the single
// subtree at rootID. Each folder appears at most once, even with cycles.
func Folders(ctx context.Context, placesPath string, rootID int64) ([]*FolderNode, error) {
	var rows []places.Folder
	err := snapshot.With(placesPath, func(path string) error {
		store, err := places.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		defer store.Close() //nolint:errcheck // read-only snapshot

		if err := store.VerifySchema(ctx); err != nil {
			return err
		}
		rows, err = store.Folders(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return BuildFolderTree(rows, rootID)
}

// BuildFolderTree arranges folder rows into a tree. See Folders for rootID.
func BuildFolderTree(rows []places.Folder, rootID int64) ([]*FolderNode, error) {
	byID := make(map[int64]places.Folder, len(rows))
	children := make(map[int64][]int64)
	for _, f := range rows {
		byID[f.ID] = f
		if f.Parent != f.ID {
			children[f.Parent] = append(children[f.Parent], f.ID)
		}
	}

	visited := make(map[int64]bool, len(rows))
	var build func(id int64) *FolderNode
	build = func(id int64) *FolderNode {
		visited[id] = true
		node := &FolderNode{ID: id, Title: byID[id].Title}
		for _, child := range children[id] {
			if visited[child] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	if rootID != 0 {
		if _, ok := byID[rootID]; !ok {
			return nil, fmt.Errorf("%w: id %d", ErrRootNotFound, rootID)
		}
		return []*FolderNode{build(rootID)}, nil
	}

	// rows are ordered by parent, id; top-level folders have a parent that is
	// not itself a folder (the places root has parent 0).
	var roots []*FolderNode
	for _, f := range rows {
		if _, isFolder := byID[f.Parent]; isFolder && f.Parent != f.ID {
			continue
		}
		if visited[f.ID] {
			continue
		}
		roots = append(roots, build(f.ID))
	}
	return roots, nil
}
