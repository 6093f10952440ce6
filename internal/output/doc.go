// Package output renders command results for people and for scripts.
//
// Every marksync command writes through a Printer. In human mode the Printer
// uses lipgloss styles, which are dropped when stdout is not a terminal. In
// JSON mode (--json) every result is a single JSON document:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout()))
//	printer.Success(map[string]any{"message": "Synced 4 bookmarks to _data/bookmarks.yml", "count": 4})
//
// Failures are reported with printer.Error, which renders {"error": "...", "code": N}
// in JSON mode and a styled "Error: ..." line on stderr otherwise.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0: bookmarks written (or previewed)
//	output.ExitUserError   // 1: bad configuration, unknown root folder
//	output.ExitSystemError // 2: places database unreadable, schema changed, output not writable
//
// ExitError carries the code and wraps its cause, so errors.Is still matches
// the pipeline sentinels after classification.
package output
