package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/marksync/internal/config"
)

// newConfigCmd creates the config command.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration after applying, highest first:
flags, MARKSYNC_* environment variables, config.yaml and defaults.

config.yaml is read from the working directory, then from the marksync
config directory (` + "$MARKSYNC_CONFIG_HOME, $XDG_CONFIG_HOME/marksync or ~/.config/marksync" + `).
Keys: places_db, root_folder_id, output, window_days, fallback_category,
log_level, pretty_log.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}

	addSyncFlags(cmd, &syncFlags{})
	_ = cmd.Flags().MarkHidden("dry-run")
	return cmd
}

func runConfig(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fail(printer, err)
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"config":     cfg,
			"config_dir": config.Dir(),
		})
	}

	file := cfg.File
	if file == "" {
		file = "(none)"
	}
	places := cfg.PlacesDB
	if cfg.Discovered {
		places += " (discovered)"
	}

	printer.KeyValue("config_file", file)
	printer.KeyValue("config_dir", config.Dir())
	printer.Println()
	printer.KeyValue(config.KeyPlacesDB, places)
	printer.KeyValue(config.KeyRootFolderID, strconv.FormatInt(cfg.RootFolderID, 10))
	printer.KeyValue(config.KeyOutput, cfg.Output)
	printer.KeyValue(config.KeyWindowDays, strconv.Itoa(cfg.WindowDays))
	printer.KeyValue(config.KeyFallbackCategory, cfg.FallbackCategory)
	printer.KeyValue(config.KeyLogLevel, cfg.LogLevel)
	printer.KeyValue(config.KeyPrettyLog, strconv.FormatBool(cfg.PrettyLog))

	if err := cfg.Validate(); err != nil {
		printer.Println()
		printer.Warn("%s", err.Error())
	}
	return nil
}
