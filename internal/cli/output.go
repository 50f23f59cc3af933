package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the run itself failed: nothing bound, collision, stale glue
	ExitCommandError = 2 // the command could not run: bad path, bad config, no journal
)

// ExitError carries the process exit code for a failed command. Commands
// report the failure on their own output before returning one, so main
// only has to exit.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

const (
	statusOK    = "ok"
	statusError = "error"
)

// CLIResponse is the envelope written for --format json.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse. Code is one of the E0xx or
// E2xx codes.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter writes command results as text or as one JSON envelope
// per call. Diagnostics go to ErrWriter so they never interleave with a
// JSON document on Writer.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func (f *OutputFormatter) isJSON() bool { return f.Format == "json" }

func (f *OutputFormatter) emit(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data.
func (f *OutputFormatter) Success(data any) error {
	if f.isJSON() {
		return f.emit(CLIResponse{Status: statusOK, Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a coded error. Text output shows details only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.emit(CLIResponse{
			Status: statusError,
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, falling back to Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter == nil {
		return f.Writer
	}
	return f.ErrWriter
}
