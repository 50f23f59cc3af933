package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Bindings []string // Produced bindings for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Bindings) > 0 {
		fmt.Fprintf(&buf, "\nBindings:\n")
		for i, b := range e.Bindings {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, b)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertArtifactContains:
		return assertArtifactContains(result, a)
	case AssertArtifactLacks:
		return assertArtifactLacks(result, a)
	case AssertNamespaceHas:
		return assertNamespaceHas(result, a)
	case AssertBindingCount:
		return assertBindingCount(result, a)
	case AssertJournaled:
		return assertJournaled(result, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertArtifactContains(result *Result, a Assertion) error {
	if strings.Contains(result.Artifact, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertArtifactContains,
		Expected: fmt.Sprintf("artifact containing %q", a.Text),
		Actual:   artifactSummary(result.Artifact),
		Bindings: result.Bindings,
	}
}

func assertArtifactLacks(result *Result, a Assertion) error {
	if !strings.Contains(result.Artifact, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertArtifactLacks,
		Expected: fmt.Sprintf("artifact without %q", a.Text),
		Actual:   "text found",
		Bindings: result.Bindings,
	}
}

func assertNamespaceHas(result *Result, a Assertion) error {
	if slices.Contains(result.Paths, a.Path) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNamespaceHas,
		Expected: fmt.Sprintf("binding at %s", a.Path),
		Actual:   fmt.Sprintf("paths %v", result.Paths),
		Bindings: result.Bindings,
	}
}

func assertBindingCount(result *Result, a Assertion) error {
	if len(result.Bindings) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertBindingCount,
		Expected: fmt.Sprintf("%d binding(s)", a.Count),
		Actual:   fmt.Sprintf("%d binding(s)", len(result.Bindings)),
		Bindings: result.Bindings,
	}
}

func assertJournaled(result *Result, a Assertion) error {
	if result.Journaled == a.Status {
		return nil
	}
	actual := fmt.Sprintf("status %q", result.Journaled)
	if result.Journaled == "" {
		actual = "run not journaled"
	}
	return &AssertionError{
		Type:     AssertJournaled,
		Expected: fmt.Sprintf("journaled with status %q", a.Status),
		Actual:   actual,
	}
}

// artifactSummary shortens an artifact for failure messages.
func artifactSummary(artifact string) string {
	if artifact == "" {
		return "empty artifact"
	}
	lines := strings.Count(artifact, "\n")
	return fmt.Sprintf("artifact of %d line(s) without it", lines)
}
