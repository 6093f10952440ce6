// Package export serializes bookmark entries into data files for static site
// generators.
//
// # Formats
//
// The format is chosen from the output file extension:
//
//   - .yml, .yaml (and anything unrecognised): YAML block style
//   - .json: an indented JSON array
//
// Both formats keep the declared key order of every entry (title, url, date,
// category) and preserve the order of the entries themselves. Non-ASCII text
// is written as-is.
//
// Example YAML output:
//
//	- title: Foo
//	  url: http://x
//	  date: "2026-01-29"
//	  category: Articles
//
// # Writing
//
// WriteFile creates the destination directory if needed and replaces the target
// atomically: it writes to a temporary file in the same directory and renames
// it into place, so a reader never observes a half-written file.
package export
