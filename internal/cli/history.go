package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/pybridge/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	RunID  string
	Filter store.RunFilter
}

// HistoryRun is one journaled run with its failures.
type HistoryRun struct {
	store.Run
	Failures []store.Failure `json:"failures,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled generation runs",
		Long: `List generation runs recorded in the run journal, newest first.

The journal is named by --journal or by [journal] path in the config file.
With --run, print one run and the functions it could not bind.

Examples:
  pybridge history --journal .pybridge/runs.db
  pybridge history --journal .pybridge/runs.db --limit 5
  pybridge history --journal .pybridge/runs.db --status failed --direction go2py
  pybridge history --journal .pybridge/runs.db --failed-function go_bind_paint
  pybridge history --journal .pybridge/runs.db --run 0192f0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run and its failures")
	cmd.Flags().StringVar(&opts.Filter.Direction, "direction", "", "only runs in this direction (py2go|go2py)")
	cmd.Flags().StringVar(&opts.Filter.Status, "status", "", "only runs with this status")
	cmd.Flags().StringVar(&opts.Filter.Target, "target", "", "only runs whose target starts with this path")
	cmd.Flags().StringVar(&opts.Filter.Function, "failed-function", "", "only runs where this function failed to bind")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	cfg, err := opts.loadConfig()
	if err != nil {
		return outputError(formatter, ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	st, err := opts.openJournal(cfg)
	if err != nil {
		return outputError(formatter, ErrCodeJournal, ExitCommandError, "failed to open journal", err)
	}
	if st == nil {
		_ = formatter.Error(ErrCodeJournal, "no journal configured: use --journal or [journal] path", nil)
		return NewExitError(ExitCommandError, ErrCodeJournal+": no journal configured")
	}
	defer st.Close()

	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if err != nil {
			code, exit := errorCode(err)
			_ = formatter.Error(code, err.Error(), nil)
			return WrapExitError(exit, code, err)
		}
		failures, err := st.RunFailures(ctx, opts.RunID)
		if err != nil {
			return outputError(formatter, ErrCodeJournal, ExitCommandError, "failed to read failures", err)
		}
		hr := HistoryRun{Run: run, Failures: failures}
		if formatter.Format == "json" {
			return formatter.Success(hr)
		}
		outputHistoryRunText(formatter, hr)
		return nil
	}

	runs, err := st.QueryRuns(ctx, store.RunQuery{Where: opts.Filter.Predicate(), Limit: opts.Limit})
	if err != nil {
		return outputError(formatter, ErrCodeJournal, ExitCommandError, "failed to list runs", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found in journal.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tDIRECTION\tSTATUS\tBINDINGS\tFAILURES\tTARGET")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Direction, r.Status,
			r.SignatureCount, r.FailureCount, r.Target)
	}
	return tw.Flush()
}

func outputHistoryRunText(formatter *OutputFormatter, hr HistoryRun) {
	w := formatter.Writer
	fmt.Fprintf(w, "Run %s\n", hr.ID)
	fmt.Fprintf(w, "  Direction: %s\n", hr.Direction)
	fmt.Fprintf(w, "  Status:    %s\n", hr.Status)
	fmt.Fprintf(w, "  Target:    %s\n", hr.Target)
	if hr.Root != "" {
		fmt.Fprintf(w, "  Root:      %s\n", hr.Root)
	}
	if hr.Output != "" {
		fmt.Fprintf(w, "  Output:    %s\n", hr.Output)
	}
	if hr.Digest != "" {
		fmt.Fprintf(w, "  Digest:    %s\n", hr.Digest)
	}
	fmt.Fprintf(w, "  Duration:  %s\n", hr.FinishedAt.Sub(hr.StartedAt))
	if hr.Error != "" {
		fmt.Fprintf(w, "  Error:     %s\n", hr.Error)
	}
	if len(hr.Signatures) > 0 {
		fmt.Fprintln(w, "\nBindings:")
		for _, s := range hr.Signatures {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	if len(hr.Failures) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, f := range hr.Failures {
			fmt.Fprintf(w, "  %s:%d: %s: %s\n", f.File, f.Line, f.Function, f.Message)
		}
	}
}
