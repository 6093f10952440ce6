// Package places reads bookmark and folder rows from a Firefox places.sqlite database.
//
// The store is read-only: it never writes to the database it opens. Callers are
// expected to open a private snapshot (see the snapshot package) rather than the
// live file held by a running browser.
package places

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ItemType discriminates rows in moz_bookmarks.
type ItemType int

// Item types as stored in moz_bookmarks.type.
const (
	TypeBookmark  ItemType = 1
	TypeFolder    ItemType = 2
	TypeSeparator ItemType = 3
)

// Bookmark is a bookmark row joined with its place URL.
type Bookmark struct {
	ID        int64
	Title     string // empty when the source title is NULL
	URL       string
	DateAdded int64 // microseconds since the Unix epoch
	Parent    int64
}

// Folder is a folder row from moz_bookmarks.
type Folder struct {
	ID     int64
	Title  string
	Parent int64
}

var (
	// ErrSchemaMismatch is returned when required tables or columns are absent.
	ErrSchemaMismatch = errors.New("places schema mismatch")

	// ErrOpen is returned when the database file cannot be opened.
	ErrOpen = errors.New("cannot open places database")
)

// requiredColumns lists the columns the store queries, per table.
var requiredColumns = map[string][]string{
	"moz_bookmarks": {"id", "type", "fk", "parent", "title", "dateAdded"},
	"moz_places":    {"id", "url"},
}

// Store handles read queries against a places database.
type Store struct {
	db *sql.DB
}

// Open opens the places database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	// sql.Open is lazy; ping so a missing or corrupt file fails here.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// VerifySchema checks that the tables and columns used by the store exist.
func (s *Store) VerifySchema(ctx context.Context) error {
	for _, table := range []string{"moz_bookmarks", "moz_places"} {
		have, err := s.columns(ctx, table)
		if err != nil {
			return err
		}
		if len(have) == 0 {
			return fmt.Errorf("%w: table %s not found", ErrSchemaMismatch, table)
		}
		for _, col := range requiredColumns[table] {
			if !have[col] {
				return fmt.Errorf("%w: column %s.%s not found", ErrSchemaMismatch, table, col)
			}
		}
	}
	return nil
}

func (s *Store) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return cols, nil
}

// FolderExists reports whether id names a folder row.
func (s *Store) FolderExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM moz_bookmarks WHERE id = ? AND type = ?",
		id, TypeFolder,
	).Scan(&n)
	if err != nil {
		return false, classify("find folder", err)
	}
	return n > 0, nil
}

// ChildFolderIDs returns the ids of folders whose parent is id.
func (s *Store) ChildFolderIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM moz_bookmarks WHERE parent = ? AND type = ? ORDER BY id",
		id, TypeFolder,
	)
	if err != nil {
		return nil, classify("list child folders", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var child int64
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		ids = append(ids, child)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list child folders", err)
	}
	return ids, nil
}

// DescendantFolderIDs returns rootID followed by every folder beneath it, in
// breadth-first order. Each id appears once even if the folder table contains
// cycles or duplicate edges.
func (s *Store) DescendantFolderIDs(ctx context.Context, rootID int64) ([]int64, error) {
	visited := map[int64]bool{rootID: true}
	queue := []int64{rootID}
	result := []int64{rootID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		children, err := s.ChildFolderIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
			result = append(result, child)
		}
	}

	return result, nil
}

// RecentBookmarks returns bookmarks whose parent is one of folderIDs and that
// were added within [from, to] (microseconds since epoch), newest first.
// Rows dated after to, such as synced rows from a skewed clock, are excluded.
func (s *Store) RecentBookmarks(ctx context.Context, folderIDs []int64, from, to int64) ([]Bookmark, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(folderIDs)), ",")
	query := `
		SELECT b.id, b.title, p.url, b.dateAdded, b.parent
		FROM moz_bookmarks b
		JOIN moz_places p ON b.fk = p.id
		WHERE b.parent IN (` + placeholders + `)
		  AND b.type = ?
		  AND b.dateAdded >= ?
		  AND b.dateAdded <= ?
		ORDER BY b.dateAdded DESC, b.id DESC`

	args := make([]any, 0, len(folderIDs)+3)
	for _, id := range folderIDs {
		args = append(args, id)
	}
	args = append(args, TypeBookmark, from, to)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query bookmarks", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var (
			b     Bookmark
			title sql.NullString
			url   sql.NullString
		)
		if err := rows.Scan(&b.ID, &title, &url, &b.DateAdded, &b.Parent); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.Title = title.String
		b.URL = url.String
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query bookmarks", err)
	}

	return bookmarks, nil
}

// FolderTitle returns the title of the row with the given id. The bool is
// false when no row exists.
func (s *Store) FolderTitle(ctx context.Context, id int64) (string, bool, error) {
	var title sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT title FROM moz_bookmarks WHERE id = ?", id,
	).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify("get folder title", err)
	}
	return title.String, true, nil
}

// Folders returns every folder row ordered by parent and id.
func (s *Store) Folders(ctx context.Context) ([]Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, parent FROM moz_bookmarks WHERE type = ? ORDER BY parent, id",
		TypeFolder,
	)
	if err != nil {
		return nil, classify("list folders", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var (
			f      Folder
			title  sql.NullString
			parent sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &title, &parent); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		f.Title = title.String
		f.Parent = parent.Int64
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list folders", err)
	}
	return folders, nil
}

// classify wraps err, tagging missing-table and missing-column failures as
// ErrSchemaMismatch.
func classify(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return fmt.Errorf("%s: %w: %w", op, ErrSchemaMismatch, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
