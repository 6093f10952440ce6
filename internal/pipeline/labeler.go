package pipeline

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultFallbackCategory labels bookmarks whose folder has no usable name.
const DefaultFallbackCategory = "Uncategorized"

const labelCacheSize = 256

// TitleLookup resolves a folder id to its title; found is false for a missing row.
type TitleLookup interface {
	FolderTitle(ctx context.Context, id int64) (title string, found bool, err error)
}

// Labeler maps folder ids to category names.
type Labeler struct {
	lookup   TitleLookup
	fallback string
	cache    *lru.Cache[int64, string]
}

// NewLabeler returns a Labeler that falls back to fallback (or
// DefaultFallbackCategory when empty) for missing or unnamed folders.
func NewLabeler(lookup TitleLookup, fallback string) *Labeler {
	if fallback == "" {
		fallback = DefaultFallbackCategory
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[int64, string](labelCacheSize)
	return &Labeler{lookup: lookup, fallback: fallback, cache: cache}
}

// Label returns the display name of folderID.
func (l *Labeler) Label(ctx context.Context, folderID int64) (string, error) {
	if name, ok := l.cache.Get(folderID); ok {
		return name, nil
	}

	title, found, err := l.lookup.FolderTitle(ctx, folderID)
	if err != nil {
		return "", err
	}

	name := title
	if !found || title == "" {
		name = l.fallback
	}
	l.cache.Add(folderID, name)
	return name, nil
}
