package pipeline

import (
	"errors"

	"github.com/gorewood/marksync/internal/export"
	"github.com/gorewood/marksync/internal/places"
	"github.com/gorewood/marksync/internal/snapshot"
)

// Failure classes surfaced by a run. Each wraps its underlying cause, so
// errors.Is works against both these and the package-level sentinels.
var (
	ErrSourceUnavailable = snapshot.ErrSourceUnavailable
	ErrSchemaMismatch    = places.ErrSchemaMismatch
	ErrOutputUnwritable  = export.ErrOutputUnwritable

	// ErrRootNotFound means the configured root id is not a folder.
	ErrRootNotFound = errors.New("root folder not found")
)
