package generate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/roach88/pybridge/internal/emitter"
	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/pkgmodel"
	"github.com/roach88/pybridge/internal/scanner"
)

// ErrNoBindings means a scan found no function that could be bound.
var ErrNoBindings = errors.New("no valid bindings")

// Status is the terminal state of a run.
type Status string

const (
	StatusWritten Status = "written"
	StatusDryRun  Status = "dry-run"
	StatusCurrent Status = "current"
	StatusStale   Status = "stale"
	StatusBound   Status = "bound"
	StatusFailed  Status = "failed"
)

// Options configures a run.
type Options struct {
	// Target is a file or directory inside the package to scan.
	Target string
	// Prefixes replaces the direction's default bind prefixes when set.
	Prefixes []string
	// Tokens replaces the direction's default marker tokens when set.
	Tokens []string
	// GoPackage is the package clause of generated glue.
	GoPackage string
	// Output overrides where the artifact is written. For glue the default
	// is <root>/pybridge_bind.go; a stub is only written when Output is set.
	Output string
	// DryRun renders the artifact into the report without writing it.
	DryRun bool
	// Check compares the digest of the existing glue with a fresh scan and
	// writes nothing.
	Check bool

	Logger  *zerolog.Logger
	RunIDs  RunIDGenerator
	Clock   Clock
	Journal Journal
}

func (o Options) markers(dir scanner.Direction) scanner.Markers {
	m := scanner.DefaultMarkers(dir)
	if len(o.Prefixes) > 0 {
		m = m.WithPrefixes(o.Prefixes...)
	}
	if len(o.Tokens) > 0 {
		m.Tokens = append([]string(nil), o.Tokens...)
	}
	return m
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

func (o Options) clock() Clock {
	if o.Clock == nil {
		return systemClock{}
	}
	return o.Clock
}

func (o Options) runID() string {
	if o.RunIDs == nil {
		return UUIDv7Generator{}.Generate()
	}
	return o.RunIDs.Generate()
}

// Report summarizes one run.
type Report struct {
	RunID      string
	Direction  scanner.Direction
	Target     string
	Root       string
	Signatures []*ir.Signature
	Failures   []*scanner.ResolutionError
	// Output is the artifact path, empty when nothing was written.
	Output string
	Digest string
	Status Status
	// Content holds the rendered artifact for dry runs and unwritten stubs.
	Content []byte
	// Error is the message of the error that failed the run.
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Journal records finished runs.
type Journal interface {
	RecordRun(ctx context.Context, r *Report) error
}

func newReport(opts Options, dir scanner.Direction) *Report {
	return &Report{
		RunID:     opts.runID(),
		Direction: dir,
		Target:    opts.Target,
		StartedAt: opts.clock().Now(),
	}
}

// finish stamps the report and records it. err is returned unchanged; a
// journal failure is logged and does not fail the run.
func finish(ctx context.Context, opts Options, r *Report, err error) (*Report, error) {
	r.FinishedAt = opts.clock().Now()
	log := opts.logger()
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		r.Output = ""
		r.Content = nil
	}
	if opts.Journal != nil {
		if jerr := opts.Journal.RecordRun(ctx, r); jerr != nil {
			log.Warn().Err(jerr).Str("run_id", r.RunID).Msg("journal write failed")
		}
	}
	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("run_id", r.RunID).
		Str("direction", string(r.Direction)).
		Int("signatures", len(r.Signatures)).
		Int("failures", len(r.Failures)).
		Str("status", string(r.Status)).
		Msg("run finished")
	return r, err
}

// scan runs the scanner for dir and builds the namespace model. A scan
// without a single valid signature fails with ErrNoBindings.
func scan(ctx context.Context, opts Options, r *Report) (*pkgmodel.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		res *scanner.Result
		err error
	)
	switch r.Direction {
	case scanner.Py2Go:
		res, err = scanner.ScanPython(opts.Target, opts.markers(r.Direction), opts.logger())
	case scanner.Go2Py:
		res, err = scanner.ScanGo(opts.Target, opts.markers(r.Direction), opts.logger())
	default:
		return nil, fmt.Errorf("unknown direction %q", r.Direction)
	}
	if err != nil {
		return nil, err
	}
	r.Root = res.Root
	r.Signatures = res.Signatures()
	r.Failures = res.Failures

	if len(res.Bindings) == 0 {
		return nil, fmt.Errorf("%s: %w (%d failures)", res.Root, ErrNoBindings, len(res.Failures))
	}
	return BuildModel(res)
}

// BuildModel inserts every binding of a scan into a fresh model.
func BuildModel(res *scanner.Result) (*pkgmodel.Model, error) {
	model := pkgmodel.New(res.RootName)
	for _, b := range res.Bindings {
		if err := model.Insert(b.Path, b.Sig); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// GenerateGlue scans the Python package around opts.Target and writes its Go
// glue. With Check set it only compares digests; with DryRun it renders
// without writing.
func GenerateGlue(ctx context.Context, opts Options) (*Report, error) {
	r := newReport(opts, scanner.Py2Go)
	model, err := scan(ctx, opts, r)
	if err != nil {
		return finish(ctx, opts, r, err)
	}

	pkg := opts.GoPackage
	file, err := emitter.GoGlue(model, emitter.GoOptions{Package: pkg})
	if err != nil {
		return finish(ctx, opts, r, err)
	}
	r.Digest = file.Digest

	out := opts.Output
	if out == "" {
		out = filepath.Join(r.Root, file.Filename)
	}

	switch {
	case opts.Check:
		existing, err := readDigest(out, emitter.DigestPrefix)
		if err != nil {
			return finish(ctx, opts, r, err)
		}
		r.Status = StatusStale
		if existing == file.Digest {
			r.Status = StatusCurrent
		}
	case opts.DryRun:
		r.Status = StatusDryRun
		r.Content = file.Content
	default:
		if err := writeAtomic(out, file.Content); err != nil {
			return finish(ctx, opts, r, fmt.Errorf("write glue: %w", err))
		}
		r.Output = out
		r.Status = StatusWritten
	}
	return finish(ctx, opts, r, nil)
}

// LiveBinding is the result of a go2py run.
type LiveBinding struct {
	Report    *Report
	Namespace *emitter.Namespace
	Stub      *emitter.GeneratedFile
}

// BindLive scans the Go module around opts.Target and binds its marked
// functions to lib, returning the live namespace graph and its stub.
func BindLive(ctx context.Context, opts Options, lib emitter.Library) (*LiveBinding, error) {
	r := newReport(opts, scanner.Go2Py)
	model, err := scan(ctx, opts, r)
	if err != nil {
		_, err = finish(ctx, opts, r, err)
		return &LiveBinding{Report: r}, err
	}
	stub, err := emitter.PythonStub(model)
	if err != nil {
		_, err = finish(ctx, opts, r, err)
		return &LiveBinding{Report: r}, err
	}
	ns, err := emitter.Live(model, lib)
	if err != nil {
		_, err = finish(ctx, opts, r, err)
		return &LiveBinding{Report: r}, err
	}
	r.Digest = stub.Digest
	r.Status = StatusBound
	finish(ctx, opts, r, nil)
	return &LiveBinding{Report: r, Namespace: ns, Stub: stub}, nil
}

// GenerateStub scans the Go module around opts.Target and renders its
// Python stub, writing it to opts.Output when set.
func GenerateStub(ctx context.Context, opts Options) (*Report, error) {
	r := newReport(opts, scanner.Go2Py)
	model, err := scan(ctx, opts, r)
	if err != nil {
		return finish(ctx, opts, r, err)
	}
	stub, err := emitter.PythonStub(model)
	if err != nil {
		return finish(ctx, opts, r, err)
	}
	r.Digest = stub.Digest

	if opts.Output == "" || opts.DryRun {
		r.Status = StatusDryRun
		r.Content = stub.Content
		return finish(ctx, opts, r, nil)
	}
	if err := writeAtomic(opts.Output, stub.Content); err != nil {
		return finish(ctx, opts, r, fmt.Errorf("write stub: %w", err))
	}
	r.Output = opts.Output
	r.Status = StatusWritten
	return finish(ctx, opts, r, nil)
}
