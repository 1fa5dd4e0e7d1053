package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeValidation, "bad URL")
	want := "validation error: bad URL"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrorTypeNetwork, "fetching release", cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	want := "network error: fetching release: connection refused"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := New(ErrorTypeExtraction, "no formats found")
	outer := fmt.Errorf("download failed: %w", inner)

	var appErr *Error
	if !stderrors.As(outer, &appErr) {
		t.Fatal("errors.As should find the categorized error")
	}
	if appErr.Type != ErrorTypeExtraction {
		t.Errorf("got type %q, want %q", appErr.Type, ErrorTypeExtraction)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorType{ErrorTypeNetwork, ErrorTypeExtraction}
	for _, typ := range retryable {
		if !IsRetryable(typ) {
			t.Errorf("%s should be retryable", typ)
		}
	}

	permanent := []ErrorType{ErrorTypeConfig, ErrorTypeValidation, ErrorTypeIO, ErrorTypeCrypto, ErrorTypeUnknown}
	for _, typ := range permanent {
		if IsRetryable(typ) {
			t.Errorf("%s should not be retryable", typ)
		}
	}
}
