// Package errors provides custom error types for the cgvn pipeline.
// Every fatal data-quality failure carries enough context (table, row,
// key) for a human to locate and fix the offending source record.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Sentinel errors for the cgvn pipeline.
var (
	// ErrNotFound indicates that a requested table or column was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStructuralConflict indicates a reshape met a duplicate key pair
	ErrStructuralConflict = errors.New("structural conflict")

	// ErrUnparseableLabel indicates a period or date label carries no year
	ErrUnparseableLabel = errors.New("unparseable temporal label")

	// ErrConfig indicates an invalid or inconsistent configuration
	ErrConfig = errors.New("invalid configuration")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a value that cannot be used as-is
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StructuralConflictError reports a pivot that saw the same
// (row key, column key) pair twice. The run must abort: keeping either
// value would silently corrupt the output.
type StructuralConflictError struct {
	Table     string
	RowKey    []string // rendered row key tuple
	ColumnKey string
	FirstRow  int // zero-based index of the first occurrence
	Row       int // zero-based index of the duplicate
}

// Error implements the error interface
func (e *StructuralConflictError) Error() string {
	key := "(" + strings.Join(e.RowKey, ", ") + ")"
	if e.Table != "" {
		return fmt.Sprintf("structural conflict in %s: key %s column %q appears at rows %d and %d",
			e.Table, key, e.ColumnKey, e.FirstRow, e.Row)
	}
	return fmt.Sprintf("structural conflict: key %s column %q appears at rows %d and %d",
		key, e.ColumnKey, e.FirstRow, e.Row)
}

// Is implements errors.Is support
func (e *StructuralConflictError) Is(target error) bool {
	return target == ErrStructuralConflict
}

// NewStructuralConflictError creates a new StructuralConflictError
func NewStructuralConflictError(table string, rowKey []string, columnKey string, firstRow, row int) *StructuralConflictError {
	return &StructuralConflictError{
		Table:     table,
		RowKey:    rowKey,
		ColumnKey: columnKey,
		FirstRow:  firstRow,
		Row:       row,
	}
}

// TemporalLabelError reports a period or date label from which no year
// could be extracted.
type TemporalLabelError struct {
	Table string
	Row   int
	Label string
	Want  string // expected shape, e.g. "4-digit year" or "quarter label like 1T2020"
}

// Error implements the error interface
func (e *TemporalLabelError) Error() string {
	msg := fmt.Sprintf("unparseable temporal label %q", e.Label)
	if e.Want != "" {
		msg += " (want " + e.Want + ")"
	}
	if e.Table != "" {
		return fmt.Sprintf("%s: %s at row %d", e.Table, msg, e.Row)
	}
	return msg
}

// Is implements errors.Is support
func (e *TemporalLabelError) Is(target error) bool {
	return target == ErrUnparseableLabel
}

// NewTemporalLabelError creates a new TemporalLabelError
func NewTemporalLabelError(table string, row int, label, want string) *TemporalLabelError {
	return &TemporalLabelError{Table: table, Row: row, Label: label, Want: want}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "xlsx", "yaml", "json"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "copy"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStructuralConflict checks if an error is a reshape key conflict
func IsStructuralConflict(err error) bool {
	return errors.Is(err, ErrStructuralConflict)
}

// IsUnparseableLabel checks if an error is a temporal label failure
func IsUnparseableLabel(err error) bool {
	return errors.Is(err, ErrUnparseableLabel)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
