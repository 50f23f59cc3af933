// Package harness runs binding-generation scenarios for pybridge.
//
// A scenario writes a small source tree into a scratch directory, runs one
// generation direction over it and checks the outcome: the run status, the
// bindings that were produced, the functions that were skipped and text in
// the rendered artifact.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: add_one
//	description: "A single int function becomes one Go wrapper"
//	direction: py2go
//	target: pkg
//	files:
//	  pkg/__init__.py: |
//	    def go_bind_addOne(x: int) -> int:
//	        return x + 1
//	expect:
//	  status: dry-run
//	  bindings:
//	    - "addOne(x: i64) -> i64"
//	assertions:
//	  - type: artifact_contains
//	    text: "func (m *PyModules) AddOne("
//
// # Assertion Types
//
//   - artifact_contains: the rendered glue or stub contains text
//   - artifact_lacks: the rendered glue or stub does not contain text
//   - namespace_has: a binding exists at a dotted namespace path
//   - binding_count: exactly count bindings were produced
//   - journaled: the run was recorded in the journal with the expected status
//
// # Deterministic Testing
//
// Every run uses a fixed run ID, a deterministic clock and an in-memory
// journal, and artifacts are rendered without being written. Snapshots
// leave out the scratch directory, so they compare byte for byte across
// machines.
package harness
