package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/scanner"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// createTestReport creates a finished py2go report with one signature.
func createTestReport(id string, started time.Time) *generate.Report {
	return &generate.Report{
		RunID:     id,
		Direction: scanner.Py2Go,
		Target:    "pkg",
		Root:      "/src/pkg",
		Signatures: []*ir.Signature{{
			Name:   "addOne",
			Symbol: "go_bind_addOne",
			Params: []ir.Param{{Name: "x", Type: ir.Scalar{Kind: ir.I64}}},
			Return: ir.Scalar{Kind: ir.I64},
			Origin: ir.Origin{File: "__init__.py", Module: []string{"pkg"}, Line: 1},
		}},
		Output:     "/src/pkg/pybridge_bind.go",
		Digest:     "sha256:abc",
		Status:     generate.StatusWritten,
		StartedAt:  started,
		FinishedAt: started.Add(15 * time.Millisecond),
	}
}

// withFailures appends resolution failures to r.
func withFailures(r *generate.Report, names ...string) *generate.Report {
	for i, name := range names {
		r.Failures = append(r.Failures, &scanner.ResolutionError{
			Function: name,
			File:     "__init__.py",
			Line:     10 + i,
			Err:      errors.New("unsupported annotation"),
		})
	}
	return r
}
