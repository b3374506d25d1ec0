package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/loader"
	"github.com/roach88/embody/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Embodiment failure (missing parameter, cycle, key collision, ...)
	ExitCommandError = 2 // Command error (bad flags, unreadable files, invalid config, ...)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Template or parameter file could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeUsage       = "E008" // Invalid flag value

	// Embodiment errors
	ErrCodeMissingParameter = "E201"
	ErrCodeCycle            = "E202"
	ErrCodeKeyCollision     = "E203"
	ErrCodePathNotFound     = "E204"
	ErrCodeInvalidPath      = "E205"
	ErrCodeInvalidConfig    = "E206"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written through an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an
// ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Classify maps an error to its response code and exit code.
func Classify(err error) (code string, exit int) {
	var e *errdefs.Error
	if errors.As(err, &e) {
		switch e.Code {
		case errdefs.ErrCodeMissingParameter:
			return ErrCodeMissingParameter, ExitFailure
		case errdefs.ErrCodeCycleDetected:
			return ErrCodeCycle, ExitFailure
		case errdefs.ErrCodeKeyCollision:
			return ErrCodeKeyCollision, ExitFailure
		case errdefs.ErrCodePathNotFound:
			return ErrCodePathNotFound, ExitFailure
		case errdefs.ErrCodeInvalidPath:
			return ErrCodeInvalidPath, ExitCommandError
		case errdefs.ErrCodeInvalidConfig:
			return ErrCodeInvalidConfig, ExitCommandError
		}
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case errors.Is(err, loader.ErrUnsupportedFormat),
		errors.Is(err, loader.ErrDecode),
		errors.Is(err, store.ErrNotParamStore),
		errors.Is(err, ErrConfigFile):
		return ErrCodeLoadFailed, ExitCommandError
	}
	return ErrCodeGeneric, ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E201", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns the ExitError the
// command should return. Structured errors carry their names and path as
// details.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := Classify(err)

	var details any
	var e *errdefs.Error
	if errors.As(err, &e) {
		switch {
		case len(e.Names) > 0:
			details = map[string]any{"names": e.Names}
		case e.Path != "" || e.Code == errdefs.ErrCodeCycleDetected:
			details = map[string]any{"path": e.Path}
		}
	}

	_ = f.Error(code, err.Error(), details)
	return reported(WrapExitError(exit, code, err))
}

// FailCode reports err under an explicit response code, for failures
// Classify cannot know about such as writing output.
func (f *OutputFormatter) FailCode(exit int, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return reported(WrapExitError(exit, code, err))
}

func reported(e *ExitError) *ExitError {
	e.reported = true
	return e
}

// Reported reports whether err was already written to the user by
// OutputFormatter.Fail.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// encode writes one JSON response line. HTML escaping is disabled so
// markers and URLs in messages stay readable.
func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
