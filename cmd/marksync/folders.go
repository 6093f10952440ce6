package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/gorewood/marksync/internal/output"
	"github.com/gorewood/marksync/internal/pipeline"
)

// foldersFlags holds the command-line flags for the folders command.
type foldersFlags struct {
	under int64
	flat  bool
}

// newFoldersCmd creates the folders command.
func newFoldersCmd() *cobra.Command {
	flags := &foldersFlags{}

	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Show the bookmark folder tree with folder ids",
		Long: `Show the bookmark folder tree with folder ids.

Use it to find the id to pass as --root-folder (or root_folder_id in
config.yaml).

Examples:
  marksync folders               # Every folder
  marksync folders --under 42    # Only folder 42 and its subfolders
  marksync folders --flat        # One row per folder
  marksync folders --json        # Nested JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFolders(cmd, flags)
		},
	}

	cmd.Flags().String("places-db", "", "Path to Firefox places.sqlite (default: discovered profile)")
	cmd.Flags().Int64Var(&flags.under, "under", 0, "Only show this folder and its subfolders")
	cmd.Flags().BoolVar(&flags.flat, "flat", false, "Print a table instead of a tree")

	return cmd
}

// runFolders executes the folders command.
func runFolders(cmd *cobra.Command, flags *foldersFlags) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fail(printer, err)
	}
	if err := validation.Validate(cfg.PlacesDB, validation.Required); err != nil {
		return fail(printer, output.NewUserError("places database not found; set --places-db or MARKSYNC_PLACES_DB"))
	}

	nodes, err := pipeline.Folders(cmd.Context(), cfg.PlacesDB, flags.under)
	if err != nil {
		return fail(printer, err)
	}

	switch {
	case printer.IsJSON():
		return printer.WriteJSON(map[string]any{"folders": nodes})
	case flags.flat:
		printer.Table([]string{"ID", "PARENT", "TITLE"}, folderRows(nodes))
	default:
		printer.Println(folderTree(nodes, printer.Styles()).String())
	}
	return nil
}

// folderTree renders nodes as a lipgloss tree with each id before its title.
func folderTree(nodes []*pipeline.FolderNode, styles *output.Styles) *tree.Tree {
	root := tree.New().EnumeratorStyle(styles.Muted)
	for _, n := range nodes {
		root.Child(folderBranch(n, styles))
	}
	return root
}

func folderBranch(n *pipeline.FolderNode, styles *output.Styles) any {
	label := fmt.Sprintf("%s %s", styles.Dim.Render("["+strconv.FormatInt(n.ID, 10)+"]"), folderLabel(n))
	if len(n.Children) == 0 {
		return label
	}
	branch := tree.Root(label).EnumeratorStyle(styles.Muted)
	for _, child := range n.Children {
		branch.Child(folderBranch(child, styles))
	}
	return branch
}

// folderRows lists the tree depth first, indenting titles by depth.
func folderRows(nodes []*pipeline.FolderNode) [][]string {
	var rows [][]string
	var walk func(n *pipeline.FolderNode, parent string, depth int)
	walk = func(n *pipeline.FolderNode, parent string, depth int) {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			parent,
			strings.Repeat("  ", depth) + folderLabel(n),
		})
		for _, child := range n.Children {
			walk(child, strconv.FormatInt(n.ID, 10), depth+1)
		}
	}
	for _, n := range nodes {
		walk(n, "-", 0)
	}
	return rows
}

func folderLabel(n *pipeline.FolderNode) string {
	if n.Title == "" {
		return "(untitled)"
	}
	return n.Title
}
