package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := s.RecordRun(ctx, createTestReport(id, testEpoch.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	want := []string{"run-c", "run-b", "run-a"}
	if len(runs) != len(want) {
		t.Fatalf("len(runs) = %d, want %d", len(runs), len(want))
	}
	for i, id := range want {
		if runs[i].ID != id {
			t.Errorf("runs[%d].ID = %q, want %q", i, runs[i].ID, id)
		}
	}
}

func TestListRuns_TieBreaksOnID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-b", "run-a", "run-c"} {
		if err := s.RecordRun(ctx, createTestReport(id, testEpoch)); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("got %q, %q; want run-c, run-b", runs[0].ID, runs[1].ID)
	}
}

func TestGetRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, withFailures(createTestReport("run-1", testEpoch), "bad")); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	run, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if run.Direction != "py2go" || run.Status != "written" {
		t.Errorf("direction/status = %q/%q", run.Direction, run.Status)
	}
	if run.SignatureCount != 1 || run.FailureCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", run.SignatureCount, run.FailureCount)
	}
	if len(run.Signatures) != 1 || run.Signatures[0] != "addOne(x: i64) -> i64" {
		t.Errorf("signatures = %v", run.Signatures)
	}
	if !run.StartedAt.Equal(testEpoch) {
		t.Errorf("started_at = %v, want %v", run.StartedAt, testEpoch)
	}
	if got := run.FinishedAt.Sub(run.StartedAt); got != 15*time.Millisecond {
		t.Errorf("duration = %v, want 15ms", got)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestRunFailures_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := withFailures(createTestReport("run-1", testEpoch), "zeta", "alpha", "mid")
	if err := s.RecordRun(ctx, r); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	failures, err := s.RunFailures(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunFailures() failed: %v", err)
	}
	want := []string{"zeta", "alpha", "mid"}
	if len(failures) != len(want) {
		t.Fatalf("len(failures) = %d, want %d", len(failures), len(want))
	}
	for i, name := range want {
		if failures[i].Function != name || failures[i].Ordinal != i {
			t.Errorf("failures[%d] = %+v, want function %q", i, failures[i], name)
		}
	}
	if failures[0].Message != "unsupported annotation" || failures[0].Line != 10 {
		t.Errorf("failures[0] = %+v", failures[0])
	}
}

func TestRunFailures_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	failures, err := s.RunFailures(context.Background(), "missing")
	if err != nil {
		t.Fatalf("RunFailures() failed: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("len(failures) = %d, want 0", len(failures))
	}
}
