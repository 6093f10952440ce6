// Package pipeline runs the bookmark export: snapshot the places database,
// resolve the folder subtree, pull recent bookmarks, label them and write the
// data file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gorewood/marksync/internal/export"
	"github.com/gorewood/marksync/internal/logger"
	"github.com/gorewood/marksync/internal/places"
	"github.com/gorewood/marksync/internal/snapshot"
)

const dateLayout = "2006-01-02"

// Options configures one run.
type Options struct {
	PlacesPath       string
	RootFolderID     int64
	OutputPath       string
	WindowDays       int
	FallbackCategory string

	// Now defaults to time.Now. Its location decides how dates are rendered.
	Now func() time.Time
}

// Result describes a completed run.
type Result struct {
	RunID      string         `json:"run_id"`
	Entries    []export.Entry `json:"entries"`
	FolderIDs  []int64        `json:"folder_ids"`
	Cutoff     time.Time      `json:"cutoff"`
	OutputPath string         `json:"output_path,omitempty"`
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Cutoff returns the earliest creation time included for the given now.
func Cutoff(now time.Time, windowDays int) time.Time {
	return now.AddDate(0, 0, -windowDays)
}

// Collect extracts and transforms entries without writing anything.
// The snapshot is released before Collect returns, on success or failure.
func Collect(ctx context.Context, opts Options, log logger.Logger) (*Result, error) {
	if log == nil {
		log = logger.NewNop()
	}
	runID := uuid.NewString()
	log = log.With(logger.String("run_id", runID))

	now := opts.now()
	cutoff := Cutoff(now, opts.WindowDays)
	result := &Result{RunID: runID, Cutoff: cutoff}

	start := time.Now()
	err := snapshot.With(opts.PlacesPath, func(path string) error {
		log.Debug("snapshot acquired", logger.String("source", opts.PlacesPath), logger.String("copy", path))

		store, err := places.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		defer store.Close() //nolint:errcheck // read-only snapshot

		return collect(ctx, store, opts, now, cutoff, result, log)
	})
	if err != nil {
		return nil, err
	}

	log.Debug("collect finished",
		logger.Int("entries", len(result.Entries)),
		logger.Duration("elapsed", time.Since(start)))
	return result, nil
}

func collect(
	ctx context.Context, store *places.Store, opts Options,
	now, cutoff time.Time, result *Result, log logger.Logger,
) error {
	if err := store.VerifySchema(ctx); err != nil {
		return err
	}

	ok, err := store.FolderExists(ctx, opts.RootFolderID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: id %d", ErrRootNotFound, opts.RootFolderID)
	}

	folderIDs, err := store.DescendantFolderIDs(ctx, opts.RootFolderID)
	if err != nil {
		return err
	}
	result.FolderIDs = folderIDs
	log.Debug("folders resolved", logger.Int("count", len(folderIDs)))

	bookmarks, err := store.RecentBookmarks(ctx, folderIDs, cutoff.UnixMicro(), now.UnixMicro())
	if err != nil {
		return err
	}
	log.Debug("bookmarks extracted",
		logger.Int("count", len(bookmarks)),
		logger.Time("cutoff", cutoff))

	labeler := NewLabeler(store, opts.FallbackCategory)
	entries := make([]export.Entry, 0, len(bookmarks))
	for _, b := range bookmarks {
		category, err := labeler.Label(ctx, b.Parent)
		if err != nil {
			return err
		}
		entries = append(entries, ToEntry(b, category, now.Location()))
	}
	result.Entries = entries
	return nil
}

// ToEntry converts a bookmark row into an exported entry. The title falls
// back to the URL only when it is empty.
func ToEntry(b places.Bookmark, category string, loc *time.Location) export.Entry {
	title := b.Title
	if title == "" {
		title = b.URL
	}
	return export.Entry{
		Title:    title,
		URL:      b.URL,
		Date:     time.UnixMicro(b.DateAdded).In(loc).Format(dateLayout),
		Category: category,
	}
}

// Sync runs Collect and writes the entries to opts.OutputPath.
// Nothing is written when collection fails.
func Sync(ctx context.Context, opts Options, log logger.Logger) (*Result, error) {
	if opts.OutputPath == "" {
		return nil, errors.New("output path is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	result, err := Collect(ctx, opts, log)
	if err != nil {
		return nil, err
	}

	if err := export.WriteFile(opts.OutputPath, result.Entries); err != nil {
		return nil, err
	}
	result.OutputPath = opts.OutputPath

	log.Info("bookmarks synced",
		logger.String("run_id", result.RunID),
		logger.Int("count", len(result.Entries)),
		logger.String("output", opts.OutputPath))
	return result, nil
}
