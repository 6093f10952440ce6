package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/marksync/internal/output"
)

// checkStatus represents the result of a health check.
type checkStatus string

const (
	checkPass checkStatus = "pass"
	checkWarn checkStatus = "warn"
	checkFail checkStatus = "fail"
)

// checkResult holds the result of a single health check.
type checkResult struct {
	Name    string      `json:"name"`
	Status  checkStatus `json:"status"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// doctorResult holds all check results organized by category.
type doctorResult struct {
	Version string         `json:"version"`
	Config  []checkResult  `json:"config"`
	Source  []checkResult  `json:"source"`
	Output  []checkResult  `json:"output"`
	Summary *doctorSummary `json:"summary"`
}

// doctorSummary holds the counts of check results.
type doctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
}

// doctorFlags holds the command-line flags for the doctor command.
type doctorFlags struct {
	quiet  bool
	strict bool
}

// newDoctorCmd creates the doctor command.
func newDoctorCmd() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, database and output health",
		Long: `Check that a sync would succeed, without writing anything.

Runs health checks across three categories:
  CONFIG - Settings resolve and validate
  SOURCE - places.sqlite can be copied and read, the schema is recognized,
           the root folder exists and has recent bookmarks
  OUTPUT - The output directory exists and is writable

Each check reports:
  ok - Check passed
  !! - Non-critical issue found
  XX - A sync would fail

Examples:
  marksync doctor             # Run all health checks
  marksync doctor --quiet     # Only show failures and warnings
  marksync doctor --strict    # Exit non-zero when any check fails
  marksync doctor --json      # Output results as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, flags)
		},
	}

	addSyncFlags(cmd, &syncFlags{})
	_ = cmd.Flags().MarkHidden("dry-run")
	cmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Only show failures and warnings")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with a system error when any check fails")

	return cmd
}

// runDoctor executes the doctor command.
func runDoctor(cmd *cobra.Command, flags *doctorFlags) error {
	printer := newPrinter(cmd)

	result := gatherDoctorChecks(cmd)

	if printer.IsJSON() {
		if err := printer.WriteJSON(result); err != nil {
			return err
		}
	} else {
		outputDoctorHuman(printer, result, flags.quiet)
	}

	if flags.strict && result.Summary.Failed > 0 {
		return output.NewSystemError("doctor found failing checks")
	}
	return nil
}

// gatherDoctorChecks runs all health checks and returns results.
func gatherDoctorChecks(cmd *cobra.Command) *doctorResult {
	cfg, configChecks := runConfigChecks(cmd)

	result := &doctorResult{
		Version: version,
		Config:  configChecks,
		Source:  runSourceChecks(cmd.Context(), cfg),
		Output:  runOutputChecks(cfg),
		Summary: &doctorSummary{},
	}

	for _, section := range [][]checkResult{result.Config, result.Source, result.Output} {
		for _, check := range section {
			switch check.Status {
			case checkPass:
				result.Summary.Passed++
			case checkWarn:
				result.Summary.Warnings++
			case checkFail:
				result.Summary.Failed++
			}
		}
	}

	return result
}

// outputDoctorHuman outputs the doctor result in human-readable format.
func outputDoctorHuman(printer *output.Printer, result *doctorResult, quiet bool) {
	printer.Println()
	printer.Print("marksync doctor %s\n", result.Version)

	printCheckSection(printer, "CONFIG", result.Config, quiet)
	printCheckSection(printer, "SOURCE", result.Source, quiet)
	printCheckSection(printer, "OUTPUT", result.Output, quiet)

	printer.Println()
	printer.Print("%s %d passed  %s %d warnings  %s %d failed\n",
		statusIcon(checkPass), result.Summary.Passed,
		statusIcon(checkWarn), result.Summary.Warnings,
		statusIcon(checkFail), result.Summary.Failed,
	)
}

// printCheckSection prints a section of checks. In quiet mode passing checks,
// and sections with nothing else, are skipped.
func printCheckSection(printer *output.Printer, title string, checks []checkResult, quiet bool) {
	if quiet && allPassed(checks) {
		return
	}

	printer.Println()
	printer.Println(title)

	for _, check := range checks {
		if quiet && check.Status == checkPass {
			continue
		}

		printer.Print("  %s  %s %s\n", statusIcon(check.Status), check.Name, check.Message)
		if check.Hint != "" {
			printer.Print("     %s %s\n", hintPrefix(), check.Hint)
		}
	}
}

func allPassed(checks []checkResult) bool {
	for _, check := range checks {
		if check.Status != checkPass {
			return false
		}
	}
	return true
}

// statusIcon returns the icon for a check status.
func statusIcon(status checkStatus) string {
	switch status {
	case checkPass:
		return "ok"
	case checkWarn:
		return "!!"
	case checkFail:
		return "XX"
	default:
		return "??"
	}
}

// hintPrefix returns the prefix for hint lines.
func hintPrefix() string {
	return "->"
}
