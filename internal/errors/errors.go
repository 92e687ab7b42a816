// Package errors provides structured error types for recipestore.
// All errors carry a category, code, message, and retryable flag so the
// request adapters can turn them into response envelopes consistently.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory classifies errors by the kind of failure.
type ErrorCategory string

const (
	// ErrCategoryValidation is a user-correctable problem with submitted data.
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	// ErrCategoryStorage is a failure reaching or writing the backing object.
	ErrCategoryStorage ErrorCategory = "STORAGE"
	// ErrCategoryData means the backing object exists but cannot be parsed.
	ErrCategoryData ErrorCategory = "DATA"
	// ErrCategoryQuery is a malformed find request, such as a bad sample size.
	ErrCategoryQuery ErrorCategory = "QUERY"
	// ErrCategoryInternal is everything else.
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeRecipeRequired = "RECIPE_REQUIRED"
	CodeInvalidRecord  = "INVALID_RECORD"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"
	CodeWriteConflict  = "WRITE_CONFLICT"

	// Data codes
	CodeMalformedCSV   = "MALFORMED_CSV"
	CodeInvalidUTF8    = "INVALID_UTF8"
	CodeMissingColumn  = "MISSING_COLUMN"
	CodeDecodingFailed = "DECODING_FAILED"

	// Query codes
	CodeInvalidSample    = "INVALID_SAMPLE"
	CodeInvalidParameter = "INVALID_PARAMETER"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// RecipeError is the structured error type used throughout the system.
type RecipeError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *RecipeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *RecipeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *RecipeError) Is(target error) bool {
	var t *RecipeError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new RecipeError.
func New(category ErrorCategory, code, message string) *RecipeError {
	return &RecipeError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new RecipeError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *RecipeError {
	return &RecipeError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *RecipeError) WithDetails(details map[string]interface{}) *RecipeError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var re *RecipeError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a RecipeError.
func GetCategory(err error) ErrorCategory {
	var re *RecipeError
	if errors.As(err, &re) {
		return re.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a RecipeError.
func GetCode(err error) string {
	var re *RecipeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// StatusCode maps an error chain to the HTTP-style status code carried in
// response envelopes.
func StatusCode(err error) int {
	switch GetCategory(err) {
	case ErrCategoryValidation, ErrCategoryQuery:
		return http.StatusBadRequest
	case ErrCategoryStorage:
		if GetCode(err) == CodeWriteConflict {
			return http.StatusConflict
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message of an error chain. Plain errors
// fall back to their Error string.
func Message(err error) string {
	var re *RecipeError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

// isRetryable determines if an error code is retryable.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeUploadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeWriteConflict:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *RecipeError {
	return New(ErrCategoryValidation, code, message)
}

func NewStorageError(code, message string, cause error) *RecipeError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewDataError(code, message string, cause error) *RecipeError {
	return Wrap(ErrCategoryData, code, message, cause)
}

func NewQueryError(code, message string) *RecipeError {
	return New(ErrCategoryQuery, code, message)
}

func NewInternalError(message string, cause error) *RecipeError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
