// Package config loads pybridge.toml and pybridge.cue files.
//
// Both formats are checked against the same embedded CUE schema, so a value
// rejected in one format is rejected in the other. Unknown keys are errors.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/BurntSushi/toml"
)

// File names searched by Find, in order.
const (
	TOMLName = "pybridge.toml"
	CUEName  = "pybridge.cue"
)

// ErrUnknownFormat means a config path has neither a .toml nor a .cue
// extension.
var ErrUnknownFormat = errors.New("unknown config format")

//go:embed schema.cue
var schemaSource string

// Config is the file configuration. Empty fields leave the defaults alone.
type Config struct {
	Py2Go   Direction `toml:"py2go" json:"py2go,omitempty"`
	Go2Py   Direction `toml:"go2py" json:"go2py,omitempty"`
	Journal Journal   `toml:"journal" json:"journal,omitempty"`
}

// Direction holds the settings of one binding direction.
type Direction struct {
	Prefixes  []string `toml:"prefixes" json:"prefixes,omitempty"`
	Markers   []string `toml:"markers" json:"markers,omitempty"`
	GoPackage string   `toml:"go_package" json:"go_package,omitempty"`
	Output    string   `toml:"output" json:"output,omitempty"`
}

// Journal configures the run journal.
type Journal struct {
	Path string `toml:"path" json:"path,omitempty"`
}

// Find returns the config file in dir, preferring TOML, or "" if there is
// none.
func Find(dir string) string {
	for _, name := range []string{TOMLName, CUEName} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the config file at path, choosing the format by extension.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return loadTOML(path)
	case ".cue":
		return loadCUE(path)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

func loadTOML(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	ctx := cuecontext.New()
	v := ctx.Encode(cfg)
	if err := check(ctx, v); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

func loadCUE(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("load config %s: %s", path, formatCUEError(err))
	}
	if err := check(ctx, v); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %s", path, formatCUEError(err))
	}
	return &cfg, nil
}

// check unifies v with the #Config schema.
func check(ctx *cue.Context, v cue.Value) error {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %s", formatCUEError(err))
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return errors.New(formatCUEError(err))
	}
	return nil
}

func formatCUEError(err error) string {
	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		if pos := e.Position(); pos.IsValid() {
			msg = fmt.Sprintf("%d:%d: %s", pos.Line(), pos.Column(), msg)
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return err.Error()
	}
	return strings.Join(msgs, "; ")
}
