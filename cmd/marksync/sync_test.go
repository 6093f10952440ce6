package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorewood/marksync/internal/output"
	"github.com/gorewood/marksync/internal/pipeline"
)

func TestSyncCommand_WritesYAML(t *testing.T) {
	work := isolateEnv(t)
	db := sampleDB(t)

	out, _, err := execute(t, "sync", "--places-db", db, "--root-folder", "1", "-o", "_data/bookmarks.yml")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Synced 4 bookmarks to _data/bookmarks.yml") {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(work, "_data", "bookmarks.yml"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, want := range []string{"- title: Nested", "url: http://x", "category: Articles", "title: http://example.com"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("data file missing %q:\n%s", want, data)
		}
	}
	if strings.Contains(string(data), "Outside") || strings.Contains(string(data), "Old") {
		t.Errorf("data file includes bookmarks outside the root or window:\n%s", data)
	}
}

func TestSyncCommand_JSONOutputFile(t *testing.T) {
	work := isolateEnv(t)
	db := sampleDB(t)

	if _, _, err := execute(t, "sync", "--places-db", db, "--root-folder", "2", "--output", "bookmarks.json"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(work, "bookmarks.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var entries []map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	// folder 2 holds Foo directly and Nested two levels down
	if len(entries) != 2 || entries[0]["title"] != "Nested" || entries[1]["title"] != "Foo" {
		t.Errorf("entries = %v", entries)
	}
}

func TestSyncCommand_JSONMode(t *testing.T) {
	isolateEnv(t)
	db := sampleDB(t)

	out, _, err := execute(t, "sync", "--json", "--places-db", db, "--root-folder", "1", "--output", "out.yml")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, out)
	}
	if result["count"] != float64(4) || result["output"] != "out.yml" || result["run_id"] == "" {
		t.Errorf("result = %v", result)
	}
}

func TestSyncCommand_DryRun(t *testing.T) {
	work := isolateEnv(t)
	db := sampleDB(t)

	out, stderr, err := execute(t, "sync", "--dry-run", "--places-db", db, "--root-folder", "1", "--output", "out.yml")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "- title: Nested\n") {
		t.Errorf("dry run should print YAML entries, got %q", out)
	}
	if !strings.Contains(stderr, "dry run, nothing written") {
		t.Errorf("stderr = %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(work, "out.yml")); !os.IsNotExist(err) {
		t.Errorf("dry run wrote the output file: %v", err)
	}
}

func TestSyncCommand_DryRunWithoutOutput(t *testing.T) {
	isolateEnv(t)
	db := sampleDB(t)

	out, _, err := execute(t, "sync", "--dry-run", "--json", "--places-db", db, "--root-folder", "3")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result struct {
		Count   int                 `json:"count"`
		Entries []map[string]string `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, out)
	}
	if result.Count != 1 || result.Entries[0]["category"] != "Videos" {
		t.Errorf("result = %+v", result)
	}
}

func TestSyncCommand_SettingsFromEnvAndConfigFile(t *testing.T) {
	work := isolateEnv(t)
	db := sampleDB(t)
	t.Setenv("MARKSYNC_PLACES_DB", db)
	cfg := "root_folder_id: 3\noutput: videos.yml\n"
	if err := os.WriteFile(filepath.Join(work, "config.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "sync")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Synced 1 bookmarks to videos.yml") {
		t.Errorf("output = %q", out)
	}
}

func TestSyncCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(db, work string) []string
		wantCode int
		wantErr  error
	}{
		{
			name: "unknown root folder",
			args: func(db, _ string) []string {
				return []string{"sync", "--places-db", db, "--root-folder", "4242", "--output", "out.yml"}
			},
			wantCode: output.ExitUserError,
			wantErr:  pipeline.ErrRootNotFound,
		},
		{
			name: "missing database",
			args: func(_, work string) []string {
				return []string{"sync", "--places-db", filepath.Join(work, "nope.sqlite"), "--root-folder", "1", "--output", "out.yml"}
			},
			wantCode: output.ExitSystemError,
			wantErr:  pipeline.ErrSourceUnavailable,
		},
		{
			name: "output directory is a file",
			args: func(db, work string) []string {
				blocker := filepath.Join(work, "blocker")
				_ = os.WriteFile(blocker, []byte("x"), 0o600)
				return []string{"sync", "--places-db", db, "--root-folder", "1", "--output", filepath.Join(blocker, "out.yml")}
			},
			wantCode: output.ExitSystemError,
			wantErr:  pipeline.ErrOutputUnwritable,
		},
		{
			name: "window out of range",
			args: func(db, _ string) []string {
				return []string{"sync", "--places-db", db, "--root-folder", "1", "--output", "out.yml", "--window-days", "-3"}
			},
			wantCode: output.ExitUserError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := isolateEnv(t)
			db := sampleDB(t)

			_, stderr, err := execute(t, tt.args(db, work)...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := output.GetExitCode(err); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", code, tt.wantCode, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(stderr, "Error:") {
				t.Errorf("stderr should carry the error, got %q", stderr)
			}
		})
	}
}
