// Package placestest builds small places.sqlite fixtures for tests.
package placestest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Schema is the subset of the Firefox places schema the exporter reads.
const Schema = `
CREATE TABLE moz_places (
	id INTEGER PRIMARY KEY,
	url LONGVARCHAR,
	title LONGVARCHAR
);
CREATE TABLE moz_bookmarks (
	id INTEGER PRIMARY KEY,
	type INTEGER,
	fk INTEGER DEFAULT NULL,
	parent INTEGER,
	position INTEGER,
	title LONGVARCHAR,
	dateAdded INTEGER,
	lastModified INTEGER
);
`

// DB wraps a fixture database under construction.
type DB struct {
	t      *testing.T
	Path   string
	db     *sql.DB
	nextFK int64
}

// New creates an empty fixture database with the places schema in a temp dir.
func New(t *testing.T) *DB {
	t.Helper()
	return NewWithSchema(t, Schema)
}

// NewWithSchema creates a fixture database using the given DDL.
func NewWithSchema(t *testing.T, ddl string) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "places.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}
	fx := &DB{t: t, Path: path, db: db, nextFK: 1}
	t.Cleanup(func() { _ = fx.db.Close() })
	return fx
}

// Folder inserts a folder row.
func (f *DB) Folder(id, parent int64, title string) {
	f.t.Helper()
	f.exec("INSERT INTO moz_bookmarks (id, type, parent, title, dateAdded) VALUES (?, 2, ?, ?, 0)",
		id, parent, title)
}

// UntitledFolder inserts a folder row with a NULL title.
func (f *DB) UntitledFolder(id, parent int64) {
	f.t.Helper()
	f.exec("INSERT INTO moz_bookmarks (id, type, parent, title, dateAdded) VALUES (?, 2, ?, NULL, 0)",
		id, parent)
}

// Bookmark inserts a place and a bookmark pointing at it.
func (f *DB) Bookmark(id, parent int64, title, url string, added time.Time) {
	f.t.Helper()
	var titleArg any = title
	if title == "" {
		titleArg = nil
	}
	fk := f.nextFK
	f.nextFK++
	f.exec("INSERT INTO moz_places (id, url) VALUES (?, ?)", fk, url)
	f.exec("INSERT INTO moz_bookmarks (id, type, fk, parent, title, dateAdded) VALUES (?, 1, ?, ?, ?, ?)",
		id, fk, parent, titleArg, added.UnixMicro())
}

// Separator inserts a separator row.
func (f *DB) Separator(id, parent int64, added time.Time) {
	f.t.Helper()
	f.exec("INSERT INTO moz_bookmarks (id, type, parent, dateAdded) VALUES (?, 3, ?, ?)",
		id, parent, added.UnixMicro())
}

// Exec runs arbitrary SQL against the fixture.
func (f *DB) Exec(query string, args ...any) {
	f.t.Helper()
	f.exec(query, args...)
}

func (f *DB) exec(query string, args ...any) {
	f.t.Helper()
	if _, err := f.db.Exec(query, args...); err != nil {
		f.t.Fatalf("fixture exec %q: %v", query, err)
	}
}

// Sample builds the fixture used across packages:
//
//	1 Reading
//	├── 2 Articles
//	│   └── 4 Deep
//	│       └── 5 Deeper
//	└── 3 Videos
//	9 Elsewhere (sibling of Reading)
//
// Bookmarks are dated relative to now.
func Sample(t *testing.T, now time.Time) *DB {
	t.Helper()
	fx := New(t)
	fx.Folder(1, 0, "Reading")
	fx.Folder(2, 1, "Articles")
	fx.Folder(3, 1, "Videos")
	fx.Folder(4, 2, "Deep")
	fx.Folder(5, 4, "Deeper")
	fx.Folder(9, 0, "Elsewhere")

	day := 24 * time.Hour
	fx.Bookmark(100, 2, "Foo", "http://x", now.Add(-45*day))
	fx.Bookmark(101, 2, "Old", "http://old", now.Add(-120*day))
	fx.Bookmark(102, 3, "", "http://example.com", now.Add(-10*day))
	fx.Bookmark(103, 5, "Nested", "http://nested", now.Add(-5*day))
	fx.Bookmark(104, 9, "Outside", "http://outside", now.Add(-1*day))
	fx.Bookmark(105, 1, "Top Level ✓", "http://top", now.Add(-30*day))
	fx.Separator(106, 2, now.Add(-2*day))
	return fx
}
