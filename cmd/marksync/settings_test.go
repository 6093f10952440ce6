package main

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gorewood/marksync/internal/config"
	"github.com/gorewood/marksync/internal/output"
	"github.com/gorewood/marksync/internal/pipeline"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"root not found", fmt.Errorf("%w: id 9", pipeline.ErrRootNotFound), output.ExitUserError},
		{"invalid config", validation.Errors{"output": errors.New("is required")}, output.ExitUserError},
		{"source unavailable", fmt.Errorf("%w: stat", pipeline.ErrSourceUnavailable), output.ExitSystemError},
		{"schema mismatch", fmt.Errorf("verify: %w", pipeline.ErrSchemaMismatch), output.ExitSystemError},
		{"output unwritable", fmt.Errorf("%w: rename", pipeline.ErrOutputUnwritable), output.ExitSystemError},
		{"unknown", errors.New("boom"), output.ExitSystemError},
		{"already classified", output.NewUserError("bad"), output.ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", got.Code, tt.wantCode)
			}
			if error(got) != tt.err && got.Cause == nil {
				t.Errorf("classified error lost its cause %v", tt.err)
			}
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := &config.Config{
		PlacesDB:         "/p.sqlite",
		RootFolderID:     3,
		Output:           "out.yml",
		WindowDays:       14,
		FallbackCategory: "Misc",
	}

	opts := pipelineOptions(cfg)
	if opts.PlacesPath != "/p.sqlite" || opts.RootFolderID != 3 || opts.OutputPath != "out.yml" ||
		opts.WindowDays != 14 || opts.FallbackCategory != "Misc" {
		t.Errorf("pipelineOptions() = %+v", opts)
	}
}
