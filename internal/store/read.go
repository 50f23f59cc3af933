package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound means no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a journaled generation run.
type Run struct {
	ID             string    `json:"id"`
	Direction      string    `json:"direction"`
	Target         string    `json:"target"`
	Root           string    `json:"root"`
	Status         string    `json:"status"`
	Digest         string    `json:"digest,omitempty"`
	Output         string    `json:"output,omitempty"`
	SignatureCount int       `json:"signature_count"`
	FailureCount   int       `json:"failure_count"`
	Signatures     []string  `json:"signatures"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	ToolVersion    string    `json:"tool_version"`
}

// Failure is one recorded resolution failure of a run.
type Failure struct {
	Ordinal  int    `json:"ordinal"`
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

const runColumns = `id, direction, target, root, status, digest, output, signature_count,
	failure_count, signatures, error, started_at, finished_at, tool_version`

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
//
// Returns an empty slice (not nil) when the journal is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.QueryRuns(ctx, RunQuery{Limit: limit})
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// RunFailures returns the failures recorded for a run, in scan order.
func (s *Store) RunFailures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, function, file, line, message
		FROM run_failures
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	failures := []Failure{}
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Ordinal, &f.Function, &f.File, &f.Line, &f.Message); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return failures, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		sigs              string
		started, finished string
	)
	err := row.Scan(
		&run.ID, &run.Direction, &run.Target, &run.Root, &run.Status,
		&run.Digest, &run.Output, &run.SignatureCount, &run.FailureCount,
		&sigs, &run.Error, &started, &finished, &run.ToolVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if run.Signatures, err = unmarshalSignatures(sigs); err != nil {
		return Run{}, err
	}
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return Run{}, err
	}
	return run, nil
}
