package main

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/gorewood/marksync/internal/config"
	"github.com/gorewood/marksync/internal/logger"
	"github.com/gorewood/marksync/internal/output"
	"github.com/gorewood/marksync/internal/pipeline"
)

// loadConfig resolves settings for cmd from its flags, env and config files.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, output.NewUserErrorWithCause(err.Error(), err)
	}
	return cfg, nil
}

// newLogger builds the structured logger described by cfg. Logs go to stderr
// so stdout stays clean for data and for the MCP stdio transport.
func newLogger(cfg *config.Config) logger.Logger {
	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return logger.NewNop()
	}
	return log
}

// pipelineOptions maps settings onto a pipeline run.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		PlacesPath:       cfg.PlacesDB,
		RootFolderID:     cfg.RootFolderID,
		OutputPath:       cfg.Output,
		WindowDays:       cfg.WindowDays,
		FallbackCategory: cfg.FallbackCategory,
	}
}

// classifyError assigns an exit code to a failure. Misconfiguration is the
// user's to fix; an unreadable database or output is a system error.
func classifyError(err error) *output.ExitError {
	var exitErr *output.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var invalid validation.Errors
	switch {
	case errors.As(err, &invalid):
		return output.NewUserErrorWithCause("invalid configuration: "+err.Error(), err)
	case errors.Is(err, pipeline.ErrRootNotFound):
		return output.NewUserErrorWithCause(err.Error(), err)
	case errors.Is(err, pipeline.ErrSourceUnavailable):
		return output.NewSystemErrorWithCause("cannot read places database: "+err.Error(), err)
	case errors.Is(err, pipeline.ErrSchemaMismatch):
		return output.NewSystemErrorWithCause("unrecognized places database: "+err.Error(), err)
	case errors.Is(err, pipeline.ErrOutputUnwritable):
		return output.NewSystemErrorWithCause("cannot write output: "+err.Error(), err)
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}

// fail reports err through printer and returns its classified form.
func fail(printer *output.Printer, err error) error {
	exitErr := classifyError(err)
	printer.Error(exitErr)
	return exitErr
}
