package store

import (
	"context"
	"fmt"
	"strings"
)

// Predicate is a condition on journaled runs. Values are always bound as
// parameters; column names come from a fixed set.
type Predicate interface {
	predicate()
}

// Equals matches runs whose column equals Value.
type Equals struct {
	Column string
	Value  any
}

// HasPrefix matches runs whose column starts with Prefix.
type HasPrefix struct {
	Column string
	Prefix string
}

// HasFailure matches runs that recorded a failure for Function.
type HasFailure struct {
	Function string
}

// And is the conjunction of its predicates. An empty And matches every run.
type And []Predicate

func (Equals) predicate()     {}
func (HasPrefix) predicate()  {}
func (HasFailure) predicate() {}
func (And) predicate()        {}

// queryableColumns are the runs columns a predicate may name.
var queryableColumns = map[string]bool{
	"id":           true,
	"direction":    true,
	"target":       true,
	"root":         true,
	"status":       true,
	"digest":       true,
	"output":       true,
	"tool_version": true,
}

// RunQuery selects journaled runs, newest first.
type RunQuery struct {
	Where Predicate
	// Limit caps the result; zero or less returns every match.
	Limit int
}

// RunFilter is the flag-level form of a RunQuery predicate. Empty fields
// match everything.
type RunFilter struct {
	Direction string
	Status    string
	Target    string // path prefix
	Function  string // a function that failed in the run
}

// Predicate converts the filter to a predicate.
func (f RunFilter) Predicate() Predicate {
	var and And
	if f.Direction != "" {
		and = append(and, Equals{Column: "direction", Value: f.Direction})
	}
	if f.Status != "" {
		and = append(and, Equals{Column: "status", Value: f.Status})
	}
	if f.Target != "" {
		and = append(and, HasPrefix{Column: "target", Prefix: f.Target})
	}
	if f.Function != "" {
		and = append(and, HasFailure{Function: f.Function})
	}
	return and
}

// compileQuery renders q as a parameterized SELECT. Every query is ordered
// by start time with the run ID as tiebreaker.
func compileQuery(q RunQuery) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT " + runColumns + " FROM runs")

	where, params, err := compilePredicate(q.Where)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		b.WriteString(" WHERE " + where)
	}

	b.WriteString(" ORDER BY started_at DESC, id COLLATE BINARY DESC LIMIT ?")
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	params = append(params, limit)

	return b.String(), params, nil
}

// compilePredicate returns the SQL fragment for p and its parameters. A nil
// predicate or empty And compiles to the empty string.
func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case Equals:
		if !queryableColumns[pred.Column] {
			return "", nil, fmt.Errorf("unknown run column %q", pred.Column)
		}
		return pred.Column + " = ?", []any{pred.Value}, nil
	case HasPrefix:
		if !queryableColumns[pred.Column] {
			return "", nil, fmt.Errorf("unknown run column %q", pred.Column)
		}
		// substr keeps LIKE wildcards in the prefix literal
		return "substr(" + pred.Column + ", 1, length(?)) = ?", []any{pred.Prefix, pred.Prefix}, nil
	case HasFailure:
		return "EXISTS (SELECT 1 FROM run_failures f WHERE f.run_id = runs.id AND f.function = ?)",
			[]any{pred.Function}, nil
	case And:
		var (
			parts  []string
			params []any
		)
		for _, sub := range pred {
			sql, subParams, err := compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return strings.Join(parts, " AND "), params, nil
	}
	return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
}

// QueryRuns returns the runs matching q, most recent first.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) QueryRuns(ctx context.Context, q RunQuery) ([]Run, error) {
	query, params, err := compileQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
