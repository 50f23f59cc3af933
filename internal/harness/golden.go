package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pybridge/internal/ir"
)

// Snapshot renders the deterministic part of a result as canonical JSON:
// the scenario name, direction, status, error kind, bindings and failures.
// The rendered artifact is left out; its digest already follows from the
// bindings.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	bindings := make([]any, len(result.Bindings))
	for i, b := range result.Bindings {
		bindings[i] = b
	}
	failures := make([]any, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = map[string]any{
			"function": f.Function,
			"file":     f.File,
			"line":     f.Line,
			"kind":     f.Kind,
		}
	}

	snapshot := map[string]any{
		"scenario_name": scenario.Name,
		"direction":     scenario.Direction,
		"status":        result.Status,
		"bindings":      bindings,
		"failures":      failures,
	}
	if result.ErrorKind != "" {
		snapshot["error"] = result.ErrorKind
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, Options{})
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
