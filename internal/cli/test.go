package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/pybridge/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run binding scenarios",
		Long: `Run binding scenarios through the generator.

Each scenario writes a small source tree, runs one direction in dry-run
mode, and checks the bindings, failures and rendered artifact. A scenario
with a golden file in <scenarios-dir>/golden/<name>.golden must also match
its snapshot.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  pybridge test ./scenarios
  pybridge test ./scenarios --filter "go_*"
  pybridge test ./scenarios --update
  pybridge test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := harness.FindScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}

	if len(files) == 0 && opts.Format != "json" {
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	for _, f := range files {
		sr := runScenario(cmd, opts, scenariosDir, f)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// runScenario executes a single scenario file and prints its line in text mode.
func runScenario(cmd *cobra.Command, opts *TestOptions, scenariosDir, file string) ScenarioResult {
	sr := executeScenario(cmd, opts, scenariosDir, file)

	if opts.Format != "json" {
		w := cmd.OutOrStdout()
		switch {
		case sr.Pass && opts.Update:
			fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
		case sr.Pass:
			fmt.Fprintf(w, "✓ %s\n", sr.Name)
		default:
			fmt.Fprintf(w, "✗ %s\n", sr.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	return sr
}

func executeScenario(cmd *cobra.Command, opts *TestOptions, scenariosDir, file string) ScenarioResult {
	fail := func(name string, errs ...string) ScenarioResult {
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail(filepath.Base(file), fmt.Sprintf("failed to load scenario: %v", err))
	}

	log, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to configure logging: %v", err))
	}
	if !opts.Verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	result, err := harness.Run(cmd.Context(), scenario, harness.Options{Logger: &log})
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}

	snapshot, err := harness.Snapshot(scenario, result)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to snapshot result: %v", err))
	}

	goldenPath := goldenFilePath(scenariosDir, scenario.Name)
	if opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return fail(scenario.Name, fmt.Sprintf("failed to update golden file: %v", err))
		}
	} else if golden, err := os.ReadFile(goldenPath); err == nil {
		if !bytes.Equal(bytes.TrimSpace(golden), snapshot) {
			result.AddError("snapshot does not match golden file (run with --update to regenerate)")
		}
	} else if !os.IsNotExist(err) {
		return fail(scenario.Name, fmt.Sprintf("failed to read golden file: %v", err))
	}

	if !result.Pass {
		return fail(scenario.Name, result.Errors...)
	}
	return ScenarioResult{Name: scenario.Name, Pass: true}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenariosDir, name string) string {
	return filepath.Join(scenariosDir, "golden", name+".golden")
}

// writeGolden writes a snapshot as the golden file, creating its directory.
func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
