// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load config"},
			expected: "failed to load config",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "scan module directory", Resource: "./bin"},
			expected: "failed to scan module directory: ./bin",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "write package",
				Resource:  "out/Widgets.11.2.20112.1.nupkg",
				Cause:     errors.New("disk full"),
			},
			expected: "failed to write package: out/Widgets.11.2.20112.1.nupkg: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().
		WithOperation("load config").
		Wrap(fmt.Errorf("decode: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the sentinel through the cause chain")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("run packer").
		WithResource("nuget").
		WithSuggestions("Install NuGet", "Use --format nupkg").
		Wrap(fmt.Errorf("lookup: %w", errors.New("not found"))).
		Build()

	plain := err.Format(false)
	for _, want := range []string{"failed to run packer: nuget", "• Install NuGet", "• Use --format nupkg"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q in:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. lookup: not found", "2. not found"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q in:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}

	ae := NewErrorContext().WithOperation("write manifest").WithSuggestion("retry").Build()
	if ae == nil || ae.Operation != "write manifest" || len(ae.Suggestions) != 1 {
		t.Errorf("Build() = %+v", ae)
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
	if WrapWithContext(nil, "x", "y") != nil {
		t.Error("WrapWithContext(nil) should be nil")
	}

	cause := errors.New("boom")
	got := WrapWithContext(cause, "read descriptor", "a.dll.module.cue")
	if got.Error() != "failed to read descriptor: a.dll.module.cue: boom" {
		t.Errorf("WrapWithContext().Error() = %q", got.Error())
	}
	if !errors.Is(got, cause) {
		t.Error("WrapWithContext() must unwrap to its cause")
	}
	if got := WrapWithOperation(cause, "watch ./bin").Error(); got != "failed to watch ./bin: boom" {
		t.Errorf("WrapWithOperation().Error() = %q", got)
	}
}
