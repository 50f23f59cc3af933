package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pybridge/internal/generate"
)

// StubOptions holds flags for the stub command.
type StubOptions struct {
	*RootOptions
	Prefixes []string
	Output   string
}

// NewStubCommand creates the stub command.
func NewStubCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StubOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stub <path>",
		Short: "Render the Python stub for a Go module",
		Long: `Scan the Go module containing <path> for marked functions and render the
Python type stub describing the namespace they are exposed under.

The module root is the nearest directory at or above <path> holding a
go.mod. The stub is printed unless --output is set.

Examples:
  pybridge stub ./lib
  pybridge stub ./lib --prefix Export -o lib/__init__.pyi`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStub(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Prefixes, "prefix", nil, "bind prefix (repeatable; replaces the default PyBind)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runStub(opts *StubOptions, target string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return outputError(formatter, ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	log, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return outputError(formatter, ErrCodeConfig, ExitCommandError, "invalid logging settings", err)
	}

	gopts := generate.Options{
		Target:   target,
		Prefixes: pick(opts.Prefixes, cfg.Go2Py.Prefixes),
		Tokens:   cfg.Go2Py.Markers,
		Output:   pick(opts.Output, cfg.Go2Py.Output),
		Logger:   &log,
	}

	journal, err := opts.openJournal(cfg)
	if err != nil {
		return outputError(formatter, ErrCodeJournal, ExitCommandError, "failed to open journal", err)
	}
	if journal != nil {
		defer journal.Close()
		gopts.Journal = journal
	}

	formatter.VerboseLog("Scanning %s", target)
	report, err := generate.GenerateStub(cmd.Context(), gopts)
	if err != nil {
		return outputRunError(formatter, report, err)
	}

	result := newRunResult(report)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if report.Status == generate.StatusWritten {
		fmt.Fprintf(formatter.Writer, "✓ Wrote stub for %d binding(s) to %s\n", len(result.Bindings), report.Output)
	} else {
		formatter.Writer.Write(report.Content)
	}
	outputFailuresText(formatter, result.Failures)
	return nil
}
