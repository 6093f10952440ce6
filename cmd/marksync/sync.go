package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/marksync/internal/export"
	"github.com/gorewood/marksync/internal/output"
	"github.com/gorewood/marksync/internal/pipeline"
)

// syncFlags holds the command-line flags for the sync command.
type syncFlags struct {
	dryRun bool
}

// addSourceFlags registers the flags that select what is read. Their names
// are bound to config keys by config.Load.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("places-db", "", "Path to Firefox places.sqlite (default: discovered profile)")
	cmd.Flags().Int64("root-folder", 0, "Bookmark folder id to export from")
	cmd.Flags().Int("window-days", 0, "Only export bookmarks added in the last N days (default 90)")
}

// addSyncFlags registers the source flags plus --output and --dry-run.
func addSyncFlags(cmd *cobra.Command, flags *syncFlags) {
	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Data file to write (.json for JSON, YAML otherwise)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the entries instead of writing the output file")
}

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Export recent bookmarks to the data file",
		Long: `Export recent bookmarks to the data file.

Copies places.sqlite (and its WAL) to a private temp directory, collects the
bookmarks under --root-folder and all its subfolders that were added in the
last --window-days days, and replaces --output atomically. Each entry's
category is the title of the folder that directly contains it.

Examples:
  marksync sync --root-folder 42 --output site/_data/bookmarks.yml
  marksync sync --dry-run                    # Print entries, write nothing
  marksync sync --window-days 30 --json      # Machine-readable result`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flags)
		},
	}

	addSyncFlags(cmd, flags)
	return cmd
}

// runSync executes the sync command, or a preview with --dry-run.
func runSync(cmd *cobra.Command, flags *syncFlags) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fail(printer, err)
	}

	validate := cfg.Validate
	if flags.dryRun {
		validate = cfg.ValidateSource
	}
	if err := validate(); err != nil {
		return fail(printer, err)
	}

	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // stderr sync fails on some terminals

	if cfg.Discovered {
		log.Info("using discovered places database")
		printer.Stderr("Using places database %s\n", cfg.PlacesDB)
	}

	opts := pipelineOptions(cfg)
	if flags.dryRun {
		result, err := pipeline.Collect(cmd.Context(), opts, log)
		if err != nil {
			return fail(printer, err)
		}
		return printPreview(printer, result)
	}

	result, err := pipeline.Sync(cmd.Context(), opts, log)
	if err != nil {
		return fail(printer, err)
	}

	return printer.Success(map[string]any{
		"message": fmt.Sprintf("Synced %d bookmarks to %s", len(result.Entries), result.OutputPath),
		"run_id":  result.RunID,
		"count":   len(result.Entries),
		"output":  result.OutputPath,
		"cutoff":  result.Cutoff.Format(time.RFC3339),
	})
}

// printPreview writes the entries a sync would produce. Human mode prints
// the data file body as YAML.
func printPreview(printer *output.Printer, result *pipeline.Result) error {
	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"run_id":  result.RunID,
			"count":   len(result.Entries),
			"cutoff":  result.Cutoff.Format(time.RFC3339),
			"entries": result.Entries,
		})
	}

	if err := export.EncodeYAML(printer, result.Entries); err != nil {
		return fail(printer, err)
	}
	printer.Stderr("%d bookmarks since %s (dry run, nothing written)\n",
		len(result.Entries), result.Cutoff.Format("2006-01-02"))
	return nil
}
