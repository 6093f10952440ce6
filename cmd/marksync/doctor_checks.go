package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/marksync/internal/config"
	"github.com/gorewood/marksync/internal/export"
	"github.com/gorewood/marksync/internal/pipeline"
	"github.com/gorewood/marksync/internal/places"
	"github.com/gorewood/marksync/internal/snapshot"
)

// runConfigChecks loads settings and reports on them. cfg is nil when
// loading failed.
func runConfigChecks(cmd *cobra.Command) (*config.Config, []checkResult) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, []checkResult{{
			Name:    "Config File",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Fix the YAML in config.yaml",
		}}
	}

	checks := make([]checkResult, 0, 2)
	if cfg.File != "" {
		checks = append(checks, checkResult{Name: "Config File", Status: checkPass, Message: cfg.File})
	} else {
		checks = append(checks, checkResult{
			Name:    "Config File",
			Status:  checkPass,
			Message: "none found; using flags, environment and defaults",
		})
	}

	if err := cfg.ValidateSource(); err != nil {
		checks = append(checks, checkResult{
			Name:    "Settings",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Run 'marksync config' to see the effective settings",
		})
	} else {
		checks = append(checks, checkResult{
			Name:    "Settings",
			Status:  checkPass,
			Message: fmt.Sprintf("root folder %d, %d day window", cfg.RootFolderID, cfg.WindowDays),
		})
	}

	return cfg, checks
}

// runSourceChecks reads a snapshot of the places database the way a sync
// would, reporting each stage.
func runSourceChecks(ctx context.Context, cfg *config.Config) []checkResult {
	if cfg == nil || cfg.PlacesDB == "" {
		return []checkResult{{
			Name:    "Places Database",
			Status:  checkFail,
			Message: "not configured and no default-release profile found",
			Hint:    "Set --places-db or MARKSYNC_PLACES_DB",
		}}
	}

	var checks []checkResult
	err := snapshot.With(cfg.PlacesDB, func(path string) error {
		store, err := places.Open(path)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck // read-only snapshot

		checks = append(checks, checkPlacesReadable(cfg))
		checks = append(checks, checkSchemaAndRoot(ctx, store, cfg)...)
		return nil
	})
	if err != nil {
		checks = append(checks, checkResult{
			Name:    "Places Database",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Check the path; Firefox keeps it in <profile>/places.sqlite",
		})
	}
	return checks
}

func checkPlacesReadable(cfg *config.Config) checkResult {
	msg := cfg.PlacesDB
	if cfg.Discovered {
		msg += " (discovered)"
	}
	return checkResult{Name: "Places Database", Status: checkPass, Message: msg}
}

func checkSchemaAndRoot(ctx context.Context, store *places.Store, cfg *config.Config) []checkResult {
	if err := store.VerifySchema(ctx); err != nil {
		return []checkResult{{
			Name:    "Schema",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Point --places-db at a Firefox places.sqlite",
		}}
	}
	checks := []checkResult{{Name: "Schema", Status: checkPass, Message: "moz_bookmarks and moz_places present"}}

	if cfg.RootFolderID <= 0 {
		return append(checks, checkResult{
			Name:    "Root Folder",
			Status:  checkFail,
			Message: "not configured",
			Hint:    "Run 'marksync folders' to find an id, then set --root-folder",
		})
	}

	root := checkRootFolder(ctx, store, cfg.RootFolderID)
	checks = append(checks, root)
	if root.Status == checkFail {
		return checks
	}

	return append(checks, checkRecentBookmarks(ctx, store, cfg))
}

// rootLookup is the part of places.Store the root folder check reads.
type rootLookup interface {
	FolderExists(ctx context.Context, id int64) (bool, error)
	FolderTitle(ctx context.Context, id int64) (string, bool, error)
}

func checkRootFolder(ctx context.Context, store rootLookup, id int64) checkResult {
	ok, err := store.FolderExists(ctx, id)
	if err != nil || !ok {
		msg := fmt.Sprintf("folder %d not found", id)
		if err != nil {
			msg = err.Error()
		}
		return checkResult{
			Name:    "Root Folder",
			Status:  checkFail,
			Message: msg,
			Hint:    "Run 'marksync folders' to list folder ids",
		}
	}

	title, _, err := store.FolderTitle(ctx, id)
	if err != nil {
		return checkResult{
			Name:    "Root Folder",
			Status:  checkWarn,
			Message: fmt.Sprintf("%d exists but its title could not be read: %v", id, err),
			Hint:    "Bookmarks in this folder will use the fallback category",
		}
	}
	return checkResult{
		Name:    "Root Folder",
		Status:  checkPass,
		Message: fmt.Sprintf("%d %q", id, title),
	}
}

func checkRecentBookmarks(ctx context.Context, store *places.Store, cfg *config.Config) checkResult {
	ids, err := store.DescendantFolderIDs(ctx, cfg.RootFolderID)
	if err != nil {
		return checkResult{Name: "Recent Bookmarks", Status: checkFail, Message: err.Error()}
	}
	now := time.Now()
	cutoff := pipeline.Cutoff(now, cfg.WindowDays)
	bookmarks, err := store.RecentBookmarks(ctx, ids, cutoff.UnixMicro(), now.UnixMicro())
	if err != nil {
		return checkResult{Name: "Recent Bookmarks", Status: checkFail, Message: err.Error()}
	}

	msg := fmt.Sprintf("%d in %d folders since %s", len(bookmarks), len(ids), cutoff.Format("2006-01-02"))
	if len(bookmarks) == 0 {
		return checkResult{
			Name:    "Recent Bookmarks",
			Status:  checkWarn,
			Message: msg,
			Hint:    "A sync would write an empty list; widen --window-days if that is unexpected",
		}
	}
	return checkResult{Name: "Recent Bookmarks", Status: checkPass, Message: msg}
}

// runOutputChecks verifies the output path could be replaced.
func runOutputChecks(cfg *config.Config) []checkResult {
	if cfg == nil || cfg.Output == "" {
		return []checkResult{{
			Name:    "Output Path",
			Status:  checkFail,
			Message: "not configured",
			Hint:    "Set --output or MARKSYNC_OUTPUT",
		}}
	}

	format := "YAML"
	if export.FormatFor(cfg.Output) == export.FormatJSON {
		format = "JSON"
	}
	checks := []checkResult{{Name: "Output Path", Status: checkPass, Message: cfg.Output + " (" + format + ")"}}

	if info, err := os.Stat(cfg.Output); err == nil && info.IsDir() {
		return append(checks, checkResult{
			Name:    "Output Directory",
			Status:  checkFail,
			Message: cfg.Output + " is a directory",
			Hint:    "Point --output at a file, e.g. _data/bookmarks.yml",
		})
	}

	return append(checks, checkOutputDir(filepath.Dir(cfg.Output)))
}

func checkOutputDir(dir string) checkResult {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return checkResult{
			Name:    "Output Directory",
			Status:  checkWarn,
			Message: dir + " does not exist; sync will create it",
		}
	case err != nil:
		return checkResult{Name: "Output Directory", Status: checkFail, Message: err.Error()}
	case !info.IsDir():
		return checkResult{Name: "Output Directory", Status: checkFail, Message: dir + " is not a directory"}
	}

	probe, err := os.CreateTemp(dir, ".marksync-doctor-*")
	if err != nil {
		return checkResult{
			Name:    "Output Directory",
			Status:  checkFail,
			Message: strings.TrimPrefix(err.Error(), "open "),
			Hint:    "Check permissions on " + dir,
		}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return checkResult{Name: "Output Directory", Status: checkPass, Message: dir + " is writable"}
}
