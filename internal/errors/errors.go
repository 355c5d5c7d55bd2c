// Package errors provides centralized error definitions and error handling utilities
// for taskban. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - ConfigError: malformed configuration, refinement state or coefficient table
//   - StoreError: failures talking to the task store backend
//
// Semantic errors represent common error conditions:
//   - NotFoundError: project, task or refinement state not found
//   - OutOfRangeError: a navigation relative does not exist
//   - ValidationError: invalid input
//
// # Usage
//
//	err := errors.NewNotFoundError("project", "work.infra")
//	err := errors.NewOutOfRangeError("parent", 1, "[0 0 0]")
//
//	if errors.Is(err, errors.ErrProjectNotFound) { ... }
//
//	var oor *errors.OutOfRangeError
//	if errors.As(err, &oor) && oor.Relation == "parent" { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a failure.
	SeverityError
	// SeverityCritical aborts the running command.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Sentinel errors.
var (
	// ErrProjectNotFound indicates a project path is not part of the project tree.
	ErrProjectNotFound = New("project not found")
	// ErrTaskNotFound indicates a task id does not exist in the store.
	ErrTaskNotFound = New("task not found")
	// ErrStateNotFound indicates there is no refinement session in progress.
	ErrStateNotFound = New("refinement state not found")
	// ErrNoProjects indicates the task store has no projects to navigate.
	ErrNoProjects = New("no projects available")

	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = New("invalid input")
	// ErrConfigInvalid is matched by every ConfigError.
	ErrConfigInvalid = New("invalid configuration")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// TaskbanError is the base interface for all taskban errors.
type TaskbanError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigError represents malformed persisted configuration: the config file,
// the refinement state file or the coefficient table. It is fatal for the
// running operation.
//
// Example:
//
//	err := errors.NewConfigError("invalid start timestamp", parseErr).WithPath("/home/u/.local/share/taskban/refine.yaml")
//	fmt.Println(err) // "config error [path=...]: invalid start timestamp: ..."
type ConfigError struct {
	baseError
	Path string
	Key  string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: true,
		},
	}
}

// WithPath records the file the malformed data was read from.
func (e *ConfigError) WithPath(path string) *ConfigError {
	e.Path = path
	return e
}

// WithKey records the offending key.
func (e *ConfigError) WithKey(key string) *ConfigError {
	e.Key = key
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}

	prefix := "config error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("config error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	if target == ErrConfigInvalid {
		return true
	}
	return e.baseError.Is(target)
}

// StoreError represents a failure of the task store backend (the task
// binary exiting non-zero, a database error). Its message carries backend
// internals, so the CLI only shows it at debug verbosity.
//
// Example:
//
//	err := errors.NewStoreError("export failed", err).WithBackend("taskwarrior").WithOutput(out)
type StoreError struct {
	baseError
	Backend string
	Output  string
}

// NewStoreError creates a new StoreError.
func NewStoreError(message string, cause error) *StoreError {
	return &StoreError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: false,
		},
	}
}

// WithBackend records the backend name.
func (e *StoreError) WithBackend(backend string) *StoreError {
	e.Backend = backend
	return e
}

// WithOutput records the command output of a failed backend call.
func (e *StoreError) WithOutput(output string) *StoreError {
	e.Output = strings.TrimSpace(output)
	return e
}

// Error returns the formatted error message.
func (e *StoreError) Error() string {
	prefix := "store error"
	if e.Backend != "" {
		prefix = fmt.Sprintf("store error [backend=%s]", e.Backend)
	}

	msg := fmt.Sprintf("%s: %s", prefix, e.message)
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s (output: %s)", msg, e.Output)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *StoreError) Is(target error) bool {
	if _, ok := target.(*StoreError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("project", "work.infra")
//	fmt.Println(err) // "project 'work.infra' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	switch e.ResourceType {
	case "project":
		if target == ErrProjectNotFound {
			return true
		}
	case "task":
		if target == ErrTaskNotFound {
			return true
		}
	case "refinement state":
		if target == ErrStateNotFound {
			return true
		}
	}
	return e.baseError.Is(target)
}

// OutOfRangeError reports that the requested relative of a project does not
// exist (no child, no sibling, no parent in that direction).
//
// Example:
//
//	err := errors.NewOutOfRangeError("child", 1, "[1 0 0]").WithProject("work")
//	fmt.Println(err) // "no next child of project \"work\""
type OutOfRangeError struct {
	baseError
	Relation  string
	Direction int
	Position  string
	Project   string
}

// NewOutOfRangeError creates a new OutOfRangeError. Direction is +1 for
// forward moves and -1 for backward moves.
func NewOutOfRangeError(relation string, direction int, position string) *OutOfRangeError {
	return &OutOfRangeError{
		baseError: baseError{
			message:    "navigation out of range",
			severity:   SeverityInfo,
			userFacing: true,
		},
		Relation:  relation,
		Direction: direction,
		Position:  position,
	}
}

// WithProject records the project path the move started from.
func (e *OutOfRangeError) WithProject(project string) *OutOfRangeError {
	e.Project = project
	return e
}

// Error returns the formatted error message.
func (e *OutOfRangeError) Error() string {
	word := "next"
	if e.Direction < 0 {
		word = "previous"
	}
	if e.Project != "" {
		return fmt.Sprintf("no %s %s of project %q", word, e.Relation, e.Project)
	}
	return fmt.Sprintf("no %s %s of position %s", word, e.Relation, e.Position)
}

// Is checks if this error matches the target.
func (e *OutOfRangeError) Is(target error) bool {
	if _, ok := target.(*OutOfRangeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input.
//
// Example:
//
//	err := errors.NewValidationError("unknown relation").WithField("relation").WithValue("cousin")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end
// users. Errors outside this package (flag parsing, argument counts) are
// user facing; a taskban error in the chain decides for itself.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    fmt.Fprintln(os.Stderr, err)
//	} else {
//	    fmt.Fprintln(os.Stderr, "internal error, run with -vv for details")
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var taskbanErr TaskbanError
	if As(err, &taskbanErr) {
		return taskbanErr.IsUserFacing()
	}
	return true
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement TaskbanError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var taskbanErr TaskbanError
	if As(err, &taskbanErr) {
		return taskbanErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike a bare fmt.Errorf, it returns nil for a nil error.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load refinement state")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
