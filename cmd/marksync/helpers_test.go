package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorewood/marksync/internal/config"
	"github.com/gorewood/marksync/internal/places/placestest"
)

// isolateEnv runs the test in an empty working directory with HOME and the
// config directory pointed at temp dirs and no MARKSYNC_* settings, so the
// developer's own Firefox profile and config are never picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	work := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MARKSYNC_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	for _, key := range []string{
		config.KeyPlacesDB, config.KeyRootFolderID, config.KeyOutput, config.KeyWindowDays,
		config.KeyFallbackCategory, config.KeyLogLevel, config.KeyPrettyLog,
	} {
		envKey := "MARKSYNC_" + strings.ToUpper(key)
		t.Setenv(envKey, "")
		_ = os.Unsetenv(envKey) //nolint:errcheck
	}
	t.Chdir(work)
	return work
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// sampleDB builds the shared fixture with bookmarks dated relative to now.
func sampleDB(t *testing.T) string {
	t.Helper()
	return placestest.Sample(t, time.Now()).Path
}
