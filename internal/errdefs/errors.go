package errdefs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error is the single error type raised by embodiment.
//
// Every failure is reported at the point of detection and unwinds the whole
// call; there is no partial result. Code identifies the category, Names and
// Path carry the structured details callers usually want to inspect.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Names lists the parameter names (MISSING_PARAMETER) or keys
	// (KEY_COLLISION) involved, sorted and deduplicated.
	Names []string

	// Path is the JSON Pointer rendering of the location involved
	// (CYCLE_DETECTED, PATH_NOT_FOUND, INVALID_PATH). "" is the root.
	Path string
}

// Code categorizes errors.
type Code string

const (
	// ErrCodeMissingParameter indicates strict mode found markers with no parameter.
	ErrCodeMissingParameter Code = "MISSING_PARAMETER"

	// ErrCodeCycleDetected indicates a container is reachable from itself.
	ErrCodeCycleDetected Code = "CYCLE_DETECTED"

	// ErrCodeKeyCollision indicates two map keys resolved to the same string.
	ErrCodeKeyCollision Code = "KEY_COLLISION"

	// ErrCodePathNotFound indicates a path does not address a value.
	ErrCodePathNotFound Code = "PATH_NOT_FOUND"

	// ErrCodeInvalidPath indicates a malformed path or one that conflicts
	// with the structure it is applied to.
	ErrCodeInvalidPath Code = "INVALID_PATH"

	// ErrCodeInvalidConfig indicates a configuration record failed validation.
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case len(e.Names) > 0:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, strings.Join(e.Names, ", "))
	case e.Code == ErrCodeCycleDetected || e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, displayPath(e.Path))
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// NewMissingParameter creates an error naming every absent parameter.
func NewMissingParameter(names ...string) *Error {
	return &Error{
		Code:    ErrCodeMissingParameter,
		Message: "missing required parameters",
		Names:   normalize(names),
	}
}

// NewCycle creates an error for re-entering a container at path.
func NewCycle(path string) *Error {
	return &Error{
		Code:    ErrCodeCycleDetected,
		Message: "circular reference detected",
		Path:    path,
	}
}

// NewKeyCollision creates an error naming the keys that resolved more than once.
func NewKeyCollision(keys ...string) *Error {
	return &Error{
		Code:    ErrCodeKeyCollision,
		Message: "dynamic keys resolved to the same value",
		Names:   normalize(keys),
	}
}

// NewPathNotFound creates an error for a path that addresses nothing.
func NewPathNotFound(path string) *Error {
	return &Error{
		Code:    ErrCodePathNotFound,
		Message: "path not found",
		Path:    path,
	}
}

// NewInvalidPath creates an error for a malformed or conflicting path.
func NewInvalidPath(path, reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidPath,
		Message: reason,
		Path:    path,
	}
}

// NewInvalidConfig creates a configuration validation error.
func NewInvalidConfig(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
	}
}

// HasCode reports whether err (or anything it wraps) is an *Error with code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsMissingParameter returns true if the error is a missing parameter error.
func IsMissingParameter(err error) bool { return HasCode(err, ErrCodeMissingParameter) }

// IsCycle returns true if the error is a cycle detection error.
func IsCycle(err error) bool { return HasCode(err, ErrCodeCycleDetected) }

// IsKeyCollision returns true if the error is a key collision error.
func IsKeyCollision(err error) bool { return HasCode(err, ErrCodeKeyCollision) }

// IsPathNotFound returns true if the error is a path-not-found error.
func IsPathNotFound(err error) bool { return HasCode(err, ErrCodePathNotFound) }

// IsInvalidPath returns true if the error is an invalid path error.
func IsInvalidPath(err error) bool { return HasCode(err, ErrCodeInvalidPath) }

// IsInvalidConfig returns true if the error is a configuration error.
func IsInvalidConfig(err error) bool { return HasCode(err, ErrCodeInvalidConfig) }

// normalize sorts and deduplicates names.
func normalize(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
