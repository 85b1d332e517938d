package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppErrorWithDetails(ErrRenderFailed, "cannot write output", "/tmp/out.pdf", cause)

	msg := err.Error()
	for _, want := range []string{"cannot write output", "/tmp/out.pdf"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if err.Code != ErrRenderFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrRenderFailed)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewAppError(ErrExtractFailed, "extraction failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() does not find the cause")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() does not find the AppError")
	}
	if appErr.Code != ErrExtractFailed {
		t.Errorf("Code = %v, want %v", appErr.Code, ErrExtractFailed)
	}
}

func TestIsCode(t *testing.T) {
	err := NewAppError(ErrFileNotFound, "missing", nil)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{name: "matching code", err: err, code: ErrFileNotFound, want: true},
		{name: "different code", err: err, code: ErrConfig, want: false},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", err), code: ErrFileNotFound, want: true},
		{name: "plain error", err: errors.New("plain"), code: ErrFileNotFound, want: false},
		{name: "nil error", err: nil, code: ErrFileNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewAppErrorWithPage(t *testing.T) {
	err := NewAppErrorWithPage(ErrRenderFailed, "stamp failed", 5, nil)
	if err.Page != 5 {
		t.Errorf("Page = %d, want 5", err.Page)
	}
	if err.Error() != "stamp failed" {
		t.Errorf("Error() = %q, want message only", err.Error())
	}
}
