// Package errors defines the typed error taxonomy for the stocklist
// reconciliation service. Every error carries a category, a machine
// readable code, a human suggestion and arbitrary context, on top of a
// wrapped cause with a captured stack.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryStore          ErrorCategory = "store"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeEmptyInput    ErrorCode = "empty_input"

	// Validation errors
	CodeInvalidQuantity ErrorCode = "invalid_quantity"
	CodeInvalidDate     ErrorCode = "invalid_date"
	CodeMissingField    ErrorCode = "missing_field"

	// Store errors
	CodeItemNotFound   ErrorCode = "item_not_found"
	CodeWriteFailed    ErrorCode = "write_failed"
	CodeReadFailed     ErrorCode = "read_failed"
	CodeMigrationError ErrorCode = "migration_error"

	// Reconciliation errors
	CodeStaleCursor       ErrorCode = "stale_cursor"
	CodeInvalidDecision   ErrorCode = "invalid_decision"
	CodeProcessingAborted ErrorCode = "processing_aborted"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconcilerError is the base error type for all application errors
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryParse, CategoryValidation:
		return 2
	case CategoryConfiguration:
		return 3
	case CategoryStore:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new ReconcilerError
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ReconcilerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// StoreError creates a store-related error for a failed operation on an item.
func StoreError(code ErrorCode, operation, itemID string, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeItemNotFound:
		message = fmt.Sprintf("item not found during %s: %s", operation, itemID)
		suggestion = "the catalog may have changed; re-read it and retry"
	case CodeWriteFailed:
		message = fmt.Sprintf("store write failed during %s", operation)
		suggestion = "the affected line was abandoned; re-run the import with the remaining lines"
	case CodeReadFailed:
		message = fmt.Sprintf("store read failed during %s", operation)
		suggestion = "check the store backend and retry"
	case CodeMigrationError:
		message = fmt.Sprintf("store schema migration failed during %s", operation)
		suggestion = "check the database file is writable and not corrupted"
	default:
		message = fmt.Sprintf("store error during %s", operation)
		suggestion = "check the store backend and retry"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryStore, code, message)
	} else {
		result = New(CategoryStore, code, message)
	}

	result = result.WithSuggestion(suggestion).WithContext("operation", operation)
	if itemID != "" {
		result = result.WithContext("item_id", itemID)
	}
	return result
}

// DecisionError creates a reconciliation decision error. These are
// programming or usage errors: a decision applied to an engine that is
// not awaiting one, or against a cursor the catalog has outgrown.
func DecisionError(code ErrorCode, detail string) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeStaleCursor:
		message = fmt.Sprintf("decision applied to a stale cursor: %s", detail)
		suggestion = "restart the import; the catalog changed underneath the pending decision"
	case CodeInvalidDecision:
		message = fmt.Sprintf("invalid decision: %s", detail)
		suggestion = "decisions are only valid while the engine is awaiting one"
	default:
		message = fmt.Sprintf("reconciliation decision error: %s", detail)
		suggestion = "check the engine state before applying decisions"
	}

	return New(CategoryReconciliation, code, message).
		WithSuggestion(suggestion).
		WithContext("detail", detail)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidQuantity:
		message = fmt.Sprintf("invalid quantity in field '%s': %v", field, value)
		suggestion = "quantities must be non-negative integers"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use dd/mm/yyyy, dd/mm/yy or dd/mm"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return New(CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(setting string, value interface{}, err error) *ReconcilerError {
	message := fmt.Sprintf("invalid configuration for '%s': %v", setting, value)

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, CodeInvalidConfig, message)
	} else {
		result = New(CategoryConfiguration, CodeInvalidConfig, message)
	}

	return result.
		WithSuggestion("check the configuration documentation for valid values").
		WithContext("setting", setting).
		WithContext("value", value)
}

// ErrorSummary aggregates the per-line errors collected during a bulk
// operation that does not abort on individual failures.
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	Errors     []*ReconcilerError    `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*ReconcilerError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		Errors:     errs,
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// IsReconcilerError checks if an error is a ReconcilerError
func IsReconcilerError(err error) bool {
	_, ok := err.(*ReconcilerError)
	return ok
}

// AsReconcilerError extracts a ReconcilerError from an error chain
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	var reconcilerErr *ReconcilerError
	if errors.As(err, &reconcilerErr) {
		return reconcilerErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a ReconcilerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	if reconcilerErr, ok := AsReconcilerError(err); ok {
		return reconcilerErr
	}

	return Wrap(err, category, code, message)
}
