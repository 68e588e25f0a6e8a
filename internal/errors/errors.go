// Package errors provides structured error types for the inspect launcher.
// Each error carries a machine-readable code and a hint describing how to
// recover, so both the CLI and the MCP tool server can report failures
// consistently.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a category of error for programmatic handling
type ErrorCode string

const (
	// Launch errors
	CodeTargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	CodePortExhausted  ErrorCode = "PORT_EXHAUSTED"
	CodeSpawnFailed    ErrorCode = "SPAWN_FAILED"
	CodeChildFailed    ErrorCode = "CHILD_FAILED"
	CodeLaunchTimeout  ErrorCode = "LAUNCH_TIMEOUT"

	// Parameter errors
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	CodeInvalidJSON      ErrorCode = "INVALID_JSON"

	// Configuration errors
	CodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// ExitGeneralError is the process exit code used for every failure that is
// not a child exit status.
const ExitGeneralError = 1

// LaunchError is a structured error type describing why a launch failed.
type LaunchError struct {
	// Code is a machine-readable error category
	Code ErrorCode `json:"code"`

	// Message is a human-readable description of what went wrong
	Message string `json:"message"`

	// Hint provides actionable guidance on how to fix the error
	Hint string `json:"hint,omitempty"`

	// Details contains additional context (e.g., the target, the port range)
	Details map[string]interface{} `json:"details,omitempty"`

	// ExitCode is the child's exit status for CHILD_FAILED errors
	ExitCode int `json:"exitCode,omitempty"`

	// Cause is the underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *LaunchError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Hint != "" {
		sb.WriteString(" | Hint: ")
		sb.WriteString(e.Hint)
	}

	return sb.String()
}

// Unwrap returns the underlying error for error chaining
func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to the error
func (e *LaunchError) WithDetails(key string, value interface{}) *LaunchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *LaunchError) WithCause(err error) *LaunchError {
	e.Cause = err
	return e
}

// --- Launch Errors ---

// TargetNotFound creates an error for a target that is neither an existing
// path nor a file in any search path directory.
func TargetNotFound(target string, searchPath []string) *LaunchError {
	return &LaunchError{
		Code:    CodeTargetNotFound,
		Message: fmt.Sprintf("target '%s' not found", target),
		Hint:    "Pass a path to an existing script, or add the directory holding it to the search path (--search-path).",
		Details: map[string]interface{}{
			"target":     target,
			"searchPath": searchPath,
		},
	}
}

// PortExhausted creates an error when no port in the scan window could be bound.
func PortExhausted(start, end int) *LaunchError {
	return &LaunchError{
		Code:    CodePortExhausted,
		Message: fmt.Sprintf("no available inspector port found in range %d-%d", start, end),
		Hint:    "Free a port in this range or choose another start port with --port.",
		Details: map[string]interface{}{
			"startPort": start,
			"endPort":   end,
		},
	}
}

// SpawnFailed creates an error when the runtime process could not be started.
func SpawnFailed(runtime string, err error) *LaunchError {
	return &LaunchError{
		Code:    CodeSpawnFailed,
		Message: fmt.Sprintf("failed to start %s: %v", runtime, err),
		Hint:    "Ensure the runtime is installed and on PATH, or set it explicitly with --runtime.",
		Cause:   err,
		Details: map[string]interface{}{
			"runtime": runtime,
		},
	}
}

// ChildFailed creates an error for a child that exited with a non-zero status.
func ChildFailed(target string, exitCode int) *LaunchError {
	return &LaunchError{
		Code:     CodeChildFailed,
		Message:  fmt.Sprintf("%s exited with code %d", target, exitCode),
		ExitCode: exitCode,
		Details: map[string]interface{}{
			"target":   target,
			"exitCode": exitCode,
		},
	}
}

// LaunchTimeout creates an error for a child killed after exceeding its timeout.
func LaunchTimeout(target string, timeout time.Duration) *LaunchError {
	return &LaunchError{
		Code:     CodeLaunchTimeout,
		Message:  fmt.Sprintf("%s did not exit within %s and was killed", target, timeout),
		Hint:     "Raise the timeout (--timeout) or set it to 0 to wait indefinitely.",
		ExitCode: ExitGeneralError,
		Details: map[string]interface{}{
			"target":  target,
			"timeout": timeout.String(),
		},
	}
}

// --- Parameter Errors ---

// MissingParameter creates an error for missing required parameters
func MissingParameter(paramName, description string) *LaunchError {
	return &LaunchError{
		Code:    CodeMissingParameter,
		Message: fmt.Sprintf("required parameter '%s' is missing", paramName),
		Hint:    description,
		Details: map[string]interface{}{
			"parameter": paramName,
		},
	}
}

// InvalidJSON creates an error for JSON parsing failures
func InvalidJSON(paramName string, err error, example string) *LaunchError {
	return &LaunchError{
		Code:    CodeInvalidJSON,
		Message: fmt.Sprintf("invalid JSON in parameter '%s': %v", paramName, err),
		Hint:    fmt.Sprintf("Provide valid JSON. Example: %s", example),
		Cause:   err,
		Details: map[string]interface{}{
			"parameter": paramName,
		},
	}
}

// --- Configuration Errors ---

// ConfigInvalid creates an error for an unusable configuration
func ConfigInvalid(field, reason string) *LaunchError {
	return &LaunchError{
		Code:    CodeConfigInvalid,
		Message: fmt.Sprintf("configuration field '%s' is invalid: %s", field, reason),
		Hint:    "Check the configuration file and command-line flags.",
		Details: map[string]interface{}{
			"field":  field,
			"reason": reason,
		},
	}
}

// FromError creates a LaunchError from a generic error, preserving any existing structure
func FromError(err error) *LaunchError {
	var le *LaunchError
	if stderrors.As(err, &le) {
		return le
	}
	return &LaunchError{
		Code:    "UNKNOWN_ERROR",
		Message: err.Error(),
		Cause:   err,
	}
}

// Is reports whether err is a LaunchError with the given code.
func Is(err error, code ErrorCode) bool {
	var le *LaunchError
	return stderrors.As(err, &le) && le.Code == code
}

// ExitCode maps an error to the exit code the executable should return.
// A nil error is success; a failed child yields its own exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var le *LaunchError
	if stderrors.As(err, &le) && le.ExitCode != 0 {
		return le.ExitCode
	}
	return ExitGeneralError
}
