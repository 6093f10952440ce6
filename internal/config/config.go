package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName   = "marksync"
	envPrefix = "MARKSYNC"

	// DefaultWindowDays is how far back bookmarks are exported.
	DefaultWindowDays = 90
	// MaxWindowDays caps the window at roughly a century.
	MaxWindowDays = 36500
	// DefaultFallbackCategory labels bookmarks in unnamed folders.
	DefaultFallbackCategory = "Uncategorized"
)

// Setting keys, shared by the config file, MARKSYNC_* env vars and flags.
const (
	KeyPlacesDB         = "places_db"
	KeyRootFolderID     = "root_folder_id"
	KeyOutput           = "output"
	KeyWindowDays       = "window_days"
	KeyFallbackCategory = "fallback_category"
	KeyLogLevel         = "log_level"
	KeyPrettyLog        = "pretty_log"
)

// flagKeys maps CLI flag names to setting keys.
var flagKeys = map[string]string{
	"places-db":   KeyPlacesDB,
	"root-folder": KeyRootFolderID,
	"output":      KeyOutput,
	"window-days": KeyWindowDays,
	"log-level":   KeyLogLevel,
}

// profileGlobs are searched, in order, when places_db is not configured.
var profileGlobs = []string{
	filepath.Join(".mozilla", "firefox", "*.default-release", "places.sqlite"),
	filepath.Join("Library", "Application Support", "Firefox", "Profiles", "*.default-release", "places.sqlite"),
	filepath.Join("AppData", "Roaming", "Mozilla", "Firefox", "Profiles", "*.default-release", "places.sqlite"),
}

// Config is the effective configuration for a run.
type Config struct {
	PlacesDB         string `json:"places_db"`
	RootFolderID     int64  `json:"root_folder_id"`
	Output           string `json:"output"`
	WindowDays       int    `json:"window_days"`
	FallbackCategory string `json:"fallback_category"`
	LogLevel         string `json:"log_level"`
	PrettyLog        bool   `json:"pretty_log"`

	// File is the config file that was read, if any.
	File string `json:"config_file,omitempty"`
	// Discovered is true when PlacesDB came from profile discovery.
	Discovered bool `json:"discovered,omitempty"`
}

// Load resolves settings. Precedence, highest first: flags that were set,
// MARKSYNC_* environment variables, config.yaml in the working directory or
// Dir(), then defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyPlacesDB, "")
	v.SetDefault(KeyRootFolderID, 0)
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyWindowDays, DefaultWindowDays)
	v.SetDefault(KeyFallbackCategory, DefaultFallbackCategory)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyPrettyLog, true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := Dir(); dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		PlacesDB:         expandHome(v.GetString(KeyPlacesDB)),
		RootFolderID:     v.GetInt64(KeyRootFolderID),
		Output:           expandHome(v.GetString(KeyOutput)),
		WindowDays:       v.GetInt(KeyWindowDays),
		FallbackCategory: v.GetString(KeyFallbackCategory),
		LogLevel:         v.GetString(KeyLogLevel),
		PrettyLog:        v.GetBool(KeyPrettyLog),
		File:             v.ConfigFileUsed(),
	}

	if cfg.PlacesDB == "" {
		if home, err := os.UserHomeDir(); err == nil {
			if found := DiscoverPlacesDB(home); found != "" {
				cfg.PlacesDB = found
				cfg.Discovered = true
			}
		}
	}

	return cfg, nil
}

// DiscoverPlacesDB returns the first default-release profile database under
// home, or "" if none exists.
func DiscoverPlacesDB(home string) string {
	for _, pattern := range profileGlobs {
		matches, err := filepath.Glob(filepath.Join(home, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}

// ValidateSource checks the settings needed to read bookmarks.
func (c *Config) ValidateSource() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PlacesDB,
			validation.Required.Error("is required (set --places-db or MARKSYNC_PLACES_DB)")),
		validation.Field(&c.RootFolderID,
			validation.Required.Error("is required (set --root-folder or MARKSYNC_ROOT_FOLDER_ID)"),
			validation.Min(1)),
		validation.Field(&c.WindowDays,
			validation.Required, validation.Min(1), validation.Max(MaxWindowDays)),
		validation.Field(&c.LogLevel,
			validation.In("debug", "info", "warn", "error")),
	)
}

// Validate checks every setting a sync needs, including the output path.
func (c *Config) Validate() error {
	if err := c.ValidateSource(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Output,
			validation.Required.Error("is required (set --output or MARKSYNC_OUTPUT)")),
	)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
