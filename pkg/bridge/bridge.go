package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/pybridge/internal/config"
	"github.com/roach88/pybridge/internal/emitter"
	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/store"
)

type (
	// Report summarizes one run.
	Report = generate.Report
	// Status is the terminal state of a run.
	Status = generate.Status
	// Binding is the result of a go2py bind: the live namespace graph and
	// its Python stub.
	Binding = generate.LiveBinding
	// Library resolves bound Go functions by their declared name.
	Library = emitter.Library
	// FuncLibrary is an in-process Library of registered Go functions.
	FuncLibrary = emitter.FuncLibrary
	// Namespace is one node of a live namespace graph.
	Namespace = emitter.Namespace
	// Callable invokes one bound Go function.
	Callable = emitter.Callable
)

// Run statuses.
const (
	StatusWritten = generate.StatusWritten
	StatusDryRun  = generate.StatusDryRun
	StatusCurrent = generate.StatusCurrent
	StatusStale   = generate.StatusStale
	StatusBound   = generate.StatusBound
	StatusFailed  = generate.StatusFailed
)

// ErrNoBindings is returned when a scan finds nothing that can be bound.
var ErrNoBindings = generate.ErrNoBindings

// NewFuncLibrary creates an empty in-process library.
func NewFuncLibrary() *FuncLibrary {
	return emitter.NewFuncLibrary()
}

// Option configures a Bridge.
type Option func(*settings)

type settings struct {
	cfgPath   string
	journal   string
	prefixes  []string
	markers   []string
	goPackage string
	logger    *zerolog.Logger
}

// WithConfig loads defaults from a pybridge.toml or pybridge.cue file.
func WithConfig(path string) Option {
	return func(s *settings) { s.cfgPath = path }
}

// WithJournal records every run in the SQLite journal at path.
func WithJournal(path string) Option {
	return func(s *settings) { s.journal = path }
}

// WithPrefixes replaces the default bind prefixes of both directions.
func WithPrefixes(prefixes ...string) Option {
	return func(s *settings) { s.prefixes = prefixes }
}

// WithMarkers replaces the default marker tokens of both directions.
func WithMarkers(markers ...string) Option {
	return func(s *settings) { s.markers = markers }
}

// WithGoPackage sets the package clause of generated glue.
func WithGoPackage(name string) Option {
	return func(s *settings) { s.goPackage = name }
}

// WithLogger sets the run logger. Runs are silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.logger = &log }
}

// Bridge runs binding generation with fixed settings. It is safe for
// concurrent use.
type Bridge struct {
	cfg     *config.Config
	s       settings
	journal *store.Store
}

// New creates a Bridge.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{cfg: &config.Config{}}
	for _, opt := range opts {
		opt(&b.s)
	}

	if b.s.cfgPath != "" {
		cfg, err := config.Load(b.s.cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		b.cfg = cfg
	}

	journal := b.s.journal
	if journal == "" {
		journal = b.cfg.Journal.Path
	}
	if journal != "" {
		st, err := store.Open(journal)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		b.journal = st
	}
	return b, nil
}

// Close releases the journal, if any.
func (b *Bridge) Close() error {
	if b.journal == nil {
		return nil
	}
	return b.journal.Close()
}

func (b *Bridge) options(target string, dir config.Direction) generate.Options {
	opts := generate.Options{
		Target:    target,
		Prefixes:  firstNonEmpty(b.s.prefixes, dir.Prefixes),
		Tokens:    firstNonEmpty(b.s.markers, dir.Markers),
		GoPackage: b.s.goPackage,
		Output:    dir.Output,
		Logger:    b.s.logger,
	}
	if opts.GoPackage == "" {
		opts.GoPackage = dir.GoPackage
	}
	if b.journal != nil {
		opts.Journal = b.journal
	}
	return opts
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

// GenerateGlue scans the Python package around target and writes its Go
// glue. Functions that cannot cross the boundary are listed in
// Report.Failures and left out of the glue.
func (b *Bridge) GenerateGlue(ctx context.Context, target string) (*Report, error) {
	return generate.GenerateGlue(ctx, b.options(target, b.cfg.Py2Go))
}

// RenderGlue is GenerateGlue without the write; the glue is in
// Report.Content.
func (b *Bridge) RenderGlue(ctx context.Context, target string) (*Report, error) {
	opts := b.options(target, b.cfg.Py2Go)
	opts.DryRun = true
	return generate.GenerateGlue(ctx, opts)
}

// CheckGlue reports whether the glue on disk matches a fresh scan of the
// package around target.
func (b *Bridge) CheckGlue(ctx context.Context, target string) (bool, error) {
	opts := b.options(target, b.cfg.Py2Go)
	opts.Check = true
	r, err := generate.GenerateGlue(ctx, opts)
	if err != nil {
		return false, err
	}
	return r.Status == StatusCurrent, nil
}

// Stub renders the Python stub of the Go module around target. When the
// config names a go2py output path the stub is written there; otherwise it
// is returned in Report.Content.
func (b *Bridge) Stub(ctx context.Context, target string) (*Report, error) {
	return generate.GenerateStub(ctx, b.options(target, b.cfg.Go2Py))
}

// Bind scans the Go module around target and binds its marked functions to
// lib. Every symbol is resolved before Bind returns.
func (b *Bridge) Bind(ctx context.Context, target string, lib Library) (*Binding, error) {
	if lib == nil {
		return nil, errors.New("bind: nil library")
	}
	return generate.BindLive(ctx, b.options(target, b.cfg.Go2Py), lib)
}
