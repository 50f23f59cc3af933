package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pybridge/internal/generate"
	"github.com/roach88/pybridge/internal/scanner"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Prefixes  []string
	GoPackage string
	Output    string
	DryRun    bool
	Check     bool
}

// RunResult is the JSON payload of generate and stub.
type RunResult struct {
	RunID    string        `json:"run_id"`
	Status   string        `json:"status"`
	Root     string        `json:"root"`
	Output   string        `json:"output,omitempty"`
	Digest   string        `json:"digest"`
	Bindings []string      `json:"bindings"`
	Failures []FailureInfo `json:"failures"`
	Content  string        `json:"content,omitempty"`
}

// FailureInfo describes one function that could not be bound.
type FailureInfo struct {
	Code     string `json:"code"`
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Generate Go glue for a Python package",
		Long: `Scan the Python package containing <path> for marked functions and write
Go glue that calls them with typed arguments.

The package root is the nearest directory at or above <path> holding an
__init__.py. Glue is written to <root>/pybridge_bind.go unless --output is
set. Functions whose types cannot cross the boundary are reported and
skipped; the run fails only when nothing can be bound.

Exit codes:
  0 - Glue written (or current, with --check)
  1 - Nothing bound, a name collision, or stale glue with --check
  2 - Command error (path not found, bad config, etc.)

Examples:
  pybridge generate ./mypkg
  pybridge generate ./mypkg --prefix export_ --go-package mathpy
  pybridge generate ./mypkg --check`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Prefixes, "prefix", nil, "bind prefix (repeatable; replaces the default go_bind_)")
	cmd.Flags().StringVar(&opts.GoPackage, "go-package", "", "package clause of the generated glue")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the glue instead of writing it")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if the existing glue is out of date")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "check")

	return cmd
}

func runGenerate(opts *GenerateOptions, target string, cmd *cobra.Command) error {
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
		Target:    target,
		Prefixes:  pick(opts.Prefixes, cfg.Py2Go.Prefixes),
		Tokens:    cfg.Py2Go.Markers,
		GoPackage: pick(opts.GoPackage, cfg.Py2Go.GoPackage),
		Output:    pick(opts.Output, cfg.Py2Go.Output),
		DryRun:    opts.DryRun,
		Check:     opts.Check,
		Logger:    &log,
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
	report, err := generate.GenerateGlue(cmd.Context(), gopts)
	if err != nil {
		return outputRunError(formatter, report, err)
	}

	result := newRunResult(report)
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputGenerateText(formatter, report, result)
	}

	if report.Status == generate.StatusStale {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: glue is out of date", ErrCodeStale))
	}
	return nil
}

func outputGenerateText(formatter *OutputFormatter, report *generate.Report, result RunResult) {
	w := formatter.Writer
	switch report.Status {
	case generate.StatusDryRun:
		w.Write(report.Content)
	case generate.StatusCurrent:
		fmt.Fprintf(w, "✓ Glue is current (%d binding(s))\n", len(result.Bindings))
	case generate.StatusStale:
		fmt.Fprintf(w, "✗ Error [%s]: glue is out of date; run pybridge generate\n", ErrCodeStale)
	default:
		fmt.Fprintf(w, "✓ Wrote %d binding(s) to %s\n", len(result.Bindings), report.Output)
	}
	outputFailuresText(formatter, result.Failures)
	formatter.VerboseLog("Run %s digest %s", report.RunID, report.Digest)
}

// outputFailuresText lists skipped functions as warnings on stderr.
func outputFailuresText(formatter *OutputFormatter, failures []FailureInfo) {
	w := formatter.GetErrWriter()
	for _, f := range failures {
		fmt.Fprintf(w, "warning [%s]: %s:%d: %s: %s\n", f.Code, f.File, f.Line, f.Function, f.Message)
	}
}

// newRunResult converts a finished report to its JSON payload.
func newRunResult(report *generate.Report) RunResult {
	result := RunResult{
		RunID:    report.RunID,
		Status:   string(report.Status),
		Root:     report.Root,
		Output:   report.Output,
		Digest:   report.Digest,
		Bindings: make([]string, 0, len(report.Signatures)),
		Failures: failureInfos(report.Failures),
		Content:  string(report.Content),
	}
	for _, sig := range report.Signatures {
		result.Bindings = append(result.Bindings, sig.String())
	}
	return result
}

func failureInfos(failures []*scanner.ResolutionError) []FailureInfo {
	infos := make([]FailureInfo, 0, len(failures))
	for _, f := range failures {
		infos = append(infos, FailureInfo{
			Code:     failureCode(f.Err),
			Function: f.Function,
			File:     f.File,
			Line:     f.Line,
			Message:  f.Err.Error(),
		})
	}
	return infos
}

// outputRunError reports a failed run, including any per-function failures
// collected before it failed.
func outputRunError(formatter *OutputFormatter, report *generate.Report, err error) error {
	code, exit := errorCode(err)
	var details any
	if report != nil && len(report.Failures) > 0 {
		infos := failureInfos(report.Failures)
		details = infos
		if formatter.Format != "json" {
			outputFailuresText(formatter, infos)
			details = nil
		}
	}
	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(exit, code, err)
}

// outputError reports a command error that happened before a run started.
func outputError(formatter *OutputFormatter, code string, exit int, message string, err error) error {
	_ = formatter.Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exit, fmt.Sprintf("%s: %s", code, message), err)
}
