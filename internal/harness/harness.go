package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/scanner"
	"github.com/roach88/pybridge/internal/store"
	"github.com/roach88/pybridge/internal/testutil"
)

// RunID is the fixed run ID of every scenario run.
const RunID = "scenario-run"

// Options configures scenario execution.
type Options struct {
	// Logger receives generator logs. Nil discards them.
	Logger *zerolog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh scratch directory and a fresh in-memory
// journal. A failed generation run is an outcome, not an error: err is only
// set when the scenario could not be executed at all.
//
// Execution flow:
// 1. Write the scenario files to a scratch directory
// 2. Run the scenario's direction in dry-run mode
// 3. Read the run back from the journal
// 4. Compare the outcome with Expect and evaluate assertions
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	root, err := os.MkdirTemp("", "pybridge-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(root)

	if err := writeFiles(root, scenario.Files); err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer st.Close()

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	gopts := generate.Options{
		Target:    filepath.Join(root, filepath.FromSlash(scenario.Target)),
		Prefixes:  scenario.Prefixes,
		Tokens:    scenario.Markers,
		GoPackage: scenario.GoPackage,
		DryRun:    true,
		Logger:    &log,
		RunIDs:    testutil.NewFixedRunIDGenerator(RunID),
		Clock:     testutil.NewDeterministicClock(),
		Journal:   st,
	}

	var (
		report *generate.Report
		runErr error
	)
	switch scanner.Direction(scenario.Direction) {
	case scanner.Py2Go:
		report, runErr = generate.GenerateGlue(ctx, gopts)
	case scanner.Go2Py:
		report, runErr = generate.GenerateStub(ctx, gopts)
	default:
		return nil, fmt.Errorf("unknown direction %q", scenario.Direction)
	}

	result := NewResult()
	result.Status = string(report.Status)
	result.ErrorKind = ErrorKind(runErr)
	result.Artifact = string(report.Content)
	for _, sig := range report.Signatures {
		result.Bindings = append(result.Bindings, sig.String())
		result.Paths = append(result.Paths, strings.Join(append(append([]string(nil), sig.Origin.Module...), sig.Name), "."))
	}
	for _, f := range report.Failures {
		result.Failures = append(result.Failures, FailureRecord{
			Function: f.Function,
			File:     filepath.ToSlash(f.File),
			Line:     f.Line,
			Kind:     FailureKind(f.Err),
		})
	}

	run, err := st.GetRun(ctx, RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read journaled run: %w", err)
	}
	result.Journaled = run.Status

	checkExpect(result, scenario.Expect)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// writeFiles materializes the scenario source tree under root.
func writeFiles(root string, files map[string]string) error {
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}
	return nil
}

// checkExpect compares the run outcome with the scenario's Expect clause.
func checkExpect(result *Result, expect Expect) {
	if result.Status != expect.Status {
		result.AddError(fmt.Sprintf("status: expected %q, got %q", expect.Status, result.Status))
	}
	if result.ErrorKind != expect.Error {
		result.AddError(fmt.Sprintf("error: expected %q, got %q", expect.Error, result.ErrorKind))
	}

	if expect.Bindings != nil {
		if len(result.Bindings) != len(expect.Bindings) {
			result.AddError(fmt.Sprintf("bindings: expected %d, got %d: %v", len(expect.Bindings), len(result.Bindings), result.Bindings))
		} else {
			for i, want := range expect.Bindings {
				if result.Bindings[i] != want {
					result.AddError(fmt.Sprintf("bindings[%d]: expected %q, got %q", i, want, result.Bindings[i]))
				}
			}
		}
	}

	if len(result.Failures) != len(expect.Failures) {
		result.AddError(fmt.Sprintf("failures: expected %d, got %d: %v", len(expect.Failures), len(result.Failures), result.Failures))
		return
	}
	for i, want := range expect.Failures {
		got := result.Failures[i]
		if got.Function != want.Function {
			result.AddError(fmt.Sprintf("failures[%d]: expected function %q, got %q", i, want.Function, got.Function))
		}
		if want.Kind != "" && got.Kind != want.Kind {
			result.AddError(fmt.Sprintf("failures[%d]: expected kind %q, got %q", i, want.Kind, got.Kind))
		}
	}
}
