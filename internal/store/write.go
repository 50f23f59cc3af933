package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/ir"
)

// RecordRun writes a finished run and its failures in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same run
// twice is silently ignored.
//
// RecordRun implements generate.Journal.
func (s *Store) RecordRun(ctx context.Context, r *generate.Report) (err error) {
	sigs, err := marshalSignatures(r.Signatures)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, direction, target, root, status, digest, output, signature_count,
		 failure_count, signatures, error, started_at, finished_at, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		string(r.Direction),
		r.Target,
		r.Root,
		string(r.Status),
		r.Digest,
		r.Output,
		len(r.Signatures),
		len(r.Failures),
		sigs,
		r.Error,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		ir.Version,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	for i, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_failures (run_id, ordinal, function, file, line, message)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.RunID, i, f.Function, f.File, f.Line, msg)
		if err != nil {
			return fmt.Errorf("record failure %s of run %s: %w", f.Function, r.RunID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("record run %s: commit: %w", r.RunID, err)
	}
	return nil
}
