package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRecipeError_Error(t *testing.T) {
	err := New(ErrCategoryStorage, CodeUploadFailed, "upload failed")
	expected := "[STORAGE:UPLOAD_FAILED] upload failed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestRecipeError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryStorage, CodeDownloadFailed, "download failed", cause)
	expected := "[STORAGE:DOWNLOAD_FAILED] download failed: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestRecipeError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryData, CodeMalformedCSV, "bad csv", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestRecipeError_Is(t *testing.T) {
	err1 := New(ErrCategoryStorage, CodeUploadFailed, "first")
	err2 := New(ErrCategoryStorage, CodeUploadFailed, "second")
	err3 := New(ErrCategoryStorage, CodeDownloadFailed, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		code      string
		retryable bool
	}{
		{ErrCategoryStorage, CodeUploadFailed, true},
		{ErrCategoryStorage, CodeDownloadFailed, true},
		{ErrCategoryStorage, CodeWriteConflict, true},
		{ErrCategoryStorage, CodeObjectNotFound, false},
		{ErrCategoryData, CodeMalformedCSV, false},
		{ErrCategoryQuery, CodeInvalidSample, false},
		{ErrCategoryValidation, CodeRecipeRequired, false},
		{ErrCategoryInternal, CodeUnexpected, false},
	}

	for _, tt := range tests {
		err := New(tt.category, tt.code, "test")
		if IsRetryable(err) != tt.retryable {
			t.Errorf("%s:%s retryable=%v, want %v", tt.category, tt.code, IsRetryable(err), tt.retryable)
		}
	}
}

func TestGetCategoryAndCode(t *testing.T) {
	err := fmt.Errorf("load: %w", New(ErrCategoryQuery, CodeInvalidSample, "bad sample"))
	if GetCategory(err) != ErrCategoryQuery {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryQuery)
	}
	if GetCode(err) != CodeInvalidSample {
		t.Errorf("got %q, want %q", GetCode(err), CodeInvalidSample)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-RecipeError should return empty category")
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-RecipeError should return empty code")
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError(CodeRecipeRequired, "x"), http.StatusBadRequest},
		{"query", NewQueryError(CodeInvalidSample, "x"), http.StatusBadRequest},
		{"storage", NewStorageError(CodeDownloadFailed, "x", nil), http.StatusServiceUnavailable},
		{"not found", NewStorageError(CodeObjectNotFound, "x", nil), http.StatusServiceUnavailable},
		{"conflict", NewStorageError(CodeWriteConflict, "x", nil), http.StatusConflict},
		{"data", NewDataError(CodeMalformedCSV, "x", nil), http.StatusInternalServerError},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError(CodeRecipeRequired, "Recipe Name is required"))
	if got := Message(err); got != "Recipe Name is required" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(fmt.Errorf("boom")); got != "boom" {
		t.Errorf("Message = %q", got)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCategoryValidation, CodeInvalidRecord, "bad record")
	detailed := err.WithDetails(map[string]interface{}{"field": "Page"})

	if detailed.Details["field"] != "Page" {
		t.Error("WithDetails should set details")
	}
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	v := NewValidationError(CodeRecipeRequired, "no name")
	if v.Category != ErrCategoryValidation || v.Code != CodeRecipeRequired {
		t.Error("NewValidationError mismatch")
	}

	s := NewStorageError(CodeUploadFailed, "s3 down", cause)
	if s.Category != ErrCategoryStorage || !errors.Is(s, cause) {
		t.Error("NewStorageError mismatch")
	}

	d := NewDataError(CodeInvalidUTF8, "bad bytes", cause)
	if d.Category != ErrCategoryData || !errors.Is(d, cause) {
		t.Error("NewDataError mismatch")
	}

	q := NewQueryError(CodeInvalidParameter, "bad flag")
	if q.Category != ErrCategoryQuery {
		t.Error("NewQueryError mismatch")
	}

	i := NewInternalError("unexpected", cause)
	if i.Category != ErrCategoryInternal || i.Code != CodeUnexpected {
		t.Error("NewInternalError mismatch")
	}
}
