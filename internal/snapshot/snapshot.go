// Package snapshot copies a live SQLite database to a private temporary
// location so it can be read without contending with the browser's lock.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSourceUnavailable is returned when the source database cannot be copied.
var ErrSourceUnavailable = errors.New("source database unavailable")

// fileName is the name of the copy inside the snapshot directory.
const fileName = "places.sqlite"

// removeAll is swapped in tests to simulate cleanup failures.
var removeAll = os.RemoveAll

// sidecars are journal files copied alongside the database when present.
// A running Firefox keeps recent writes in the WAL until checkpoint.
var sidecars = []string{"-wal"}

// Snapshot is a private copy of a database file.
type Snapshot struct {
	dir  string
	path string
}

// Acquire copies src into a fresh temporary directory. The copy is fully
// written and synced before Acquire returns. Callers must call Release and
// should check its error.
func Acquire(src string) (*Snapshot, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, src)
	}

	dir, err := os.MkdirTemp("", "marksync-")
	if err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	snap := &Snapshot{dir: dir, path: filepath.Join(dir, fileName)}
	if err := copyFile(src, snap.path); err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %w", ErrSourceUnavailable, err), snap.Release())
	}

	for _, suffix := range sidecars {
		side := src + suffix
		if _, err := os.Stat(side); err != nil {
			continue
		}
		if err := copyFile(side, snap.path+suffix); err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %w", ErrSourceUnavailable, err), snap.Release())
		}
	}

	return snap, nil
}

// With acquires a snapshot of src, calls fn with the copy's path and releases
// the snapshot on every exit path, including a panic in fn. A cleanup failure
// is joined to the returned error.
func With(src string, fn func(path string) error) (err error) {
	snap, err := Acquire(src)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, snap.Release())
	}()
	return fn(snap.Path())
}

// Path returns the path of the copied database.
func (s *Snapshot) Path() string {
	return s.path
}

// Dir returns the temporary directory holding the copy.
func (s *Snapshot) Dir() string {
	return s.dir
}

// Release removes the copy and any files SQLite created next to it.
// It is safe to call more than once; only the first call does any work.
func (s *Snapshot) Release() error {
	if s.dir == "" {
		return nil
	}
	dir := s.dir
	s.dir = ""
	if err := removeAll(dir); err != nil {
		return fmt.Errorf("remove snapshot %s: %w", dir, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close() //nolint:errcheck // read-only file

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}
