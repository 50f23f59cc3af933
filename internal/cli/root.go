package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/pybridge/internal/config"
	"github.com/roach88/pybridge/internal/ir"
	"github.com/roach88/pybridge/internal/logging"
	"github.com/roach88/pybridge/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file; empty means search the working directory
	Journal string // run journal database; empty means the config value
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pybridge CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pybridge",
		Short: "pybridge - typed bindings between Python and Go",
		Long: `Generate typed bindings across the Python/Go boundary.

Python functions marked with the go_bind_ prefix or decorator get Go glue;
Go functions marked with the PyBind prefix or //pybridge:bind get a Python
namespace and stub.`,
		Version:       ir.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (pybridge.toml or pybridge.cue)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "path to the SQLite run journal")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewStubCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// logger builds the run logger. Verbose selects debug level; JSON output
// selects JSON logs.
func (o *RootOptions) logger(w io.Writer) (zerolog.Logger, error) {
	lo := logging.Options{Out: w}
	if o.Verbose {
		lo.Level = zerolog.DebugLevel.String()
	}
	if o.Format == "json" {
		lo.Format = logging.FormatJSON
	}
	return logging.New(lo)
}

// loadConfig reads the --config file, or the config found in the working
// directory. No file means an empty config.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	path := o.Config
	if path == "" {
		path = config.Find(".")
	}
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// openJournal opens the run journal named by --journal or the config.
// It returns nil when no journal is configured.
func (o *RootOptions) openJournal(cfg *config.Config) (*store.Store, error) {
	path := o.Journal
	if path == "" {
		path = cfg.Journal.Path
	}
	if path == "" {
		return nil, nil
	}
	return store.Open(path)
}

// pick returns flag when it was set, otherwise fallback.
func pick[T string | []string](flag, fallback T) T {
	if len(flag) > 0 {
		return flag
	}
	return fallback
}
