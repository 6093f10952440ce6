package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigCommand_Human(t *testing.T) {
	work := isolateEnv(t)
	if err := os.WriteFile(filepath.Join(work, "config.yaml"), []byte("root_folder_id: 7\nwindow_days: 30\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MARKSYNC_OUTPUT", "site/_data/bookmarks.yml")

	out, stderr, err := execute(t, "config", "--places-db", "/data/places.sqlite")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, want := range []string{
		"places_db: /data/places.sqlite",
		"root_folder_id: 7",
		"output: site/_data/bookmarks.yml",
		"window_days: 30",
		"fallback_category: Uncategorized",
		"config.yaml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if stderr != "" {
		t.Errorf("valid config should not warn, stderr = %q", stderr)
	}
}

func TestConfigCommand_WarnsWhenInvalid(t *testing.T) {
	isolateEnv(t)

	_, stderr, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config should report, not fail: %v", err)
	}
	if !strings.Contains(stderr, "Warning") || !strings.Contains(stderr, "places_db") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestConfigCommand_JSON(t *testing.T) {
	isolateEnv(t)

	out, _, err := execute(t, "config", "--json", "--root-folder", "12")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var result struct {
		Config struct {
			RootFolderID int64 `json:"root_folder_id"`
			WindowDays   int   `json:"window_days"`
		} `json:"config"`
		ConfigDir string `json:"config_dir"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, out)
	}
	if result.Config.RootFolderID != 12 || result.Config.WindowDays != 90 || result.ConfigDir == "" {
		t.Errorf("result = %+v", result)
	}
}
