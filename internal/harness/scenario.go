package harness

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pybridge/internal/scanner"
)

// Scenario defines one generation run and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Direction is py2go (Go glue) or go2py (Python stub).
	Direction string `yaml:"direction"`

	// Files maps slash-separated paths to file contents. They are written
	// under a scratch directory before the run.
	Files map[string]string `yaml:"files"`

	// Target is the scan target, relative to the scratch directory.
	Target string `yaml:"target"`

	// Prefixes and Markers replace the direction's default markers.
	Prefixes []string `yaml:"prefixes,omitempty"`
	Markers  []string `yaml:"markers,omitempty"`

	// GoPackage is the package clause of py2go glue.
	GoPackage string `yaml:"go_package,omitempty"`

	// Expect describes the run outcome.
	Expect Expect `yaml:"expect"`

	// Assertions check the rendered artifact and the journal.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the expected outcome of the run.
type Expect struct {
	// Status is the expected run status, e.g. "dry-run" or "failed".
	Status string `yaml:"status"`

	// Error is the expected error kind of a failed run, e.g. "no_bindings".
	Error string `yaml:"error,omitempty"`

	// Bindings lists the expected signatures in compact form, in order.
	// Nil skips the check; an empty list expects none.
	Bindings []string `yaml:"bindings,omitempty"`

	// Failures lists the functions expected to be skipped, in order.
	Failures []FailureExpect `yaml:"failures,omitempty"`
}

// FailureExpect is one expected per-function failure.
type FailureExpect struct {
	Function string `yaml:"function"`
	Kind     string `yaml:"kind"`
}

// Assertion checks one property of the run beyond Expect.
type Assertion struct {
	// Type selects the assertion; see the Assert constants.
	Type string `yaml:"type"`

	// Text is searched for by artifact_contains and artifact_lacks.
	Text string `yaml:"text,omitempty"`

	// Path is the dotted binding path for namespace_has, e.g. "shapes.geo.Area".
	Path string `yaml:"path,omitempty"`

	// Count is the expected number of bindings for binding_count.
	Count int `yaml:"count,omitempty"`

	// Status is the expected journaled status for journaled.
	Status string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertArtifactContains = "artifact_contains"
	AssertArtifactLacks    = "artifact_lacks"
	AssertNamespaceHas     = "namespace_has"
	AssertBindingCount     = "binding_count"
	AssertJournaled        = "journaled"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the YAML scenario files under dir whose base name
// (without extension) matches filter. An empty filter matches everything.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})

	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch scanner.Direction(s.Direction) {
	case scanner.Py2Go, scanner.Go2Py:
	case "":
		return fmt.Errorf("direction is required")
	default:
		return fmt.Errorf("unknown direction %q", s.Direction)
	}

	if len(s.Files) == 0 {
		return fmt.Errorf("files map is required and must be non-empty")
	}
	for name := range s.Files {
		if err := validateRelPath(name); err != nil {
			return fmt.Errorf("files[%q]: %w", name, err)
		}
	}

	if s.Target == "" {
		return fmt.Errorf("target is required")
	}
	if err := validateRelPath(s.Target); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	if s.Expect.Status == "" {
		return fmt.Errorf("expect.status is required")
	}
	for i, f := range s.Expect.Failures {
		if f.Function == "" {
			return fmt.Errorf("expect.failures[%d]: function is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateRelPath rejects paths that would escape the scratch directory.
func validateRelPath(p string) error {
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return fmt.Errorf("path must be relative")
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path escapes the scenario directory")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertArtifactContains, AssertArtifactLacks:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertNamespaceHas:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for namespace_has", index)
		}
	case AssertBindingCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for binding_count", index)
		}
	case AssertJournaled:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for journaled", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
