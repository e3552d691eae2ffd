// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"errors"
	"io/fs"
	"testing"
)

func TestBrokenReferenceError_Message(t *testing.T) {
	t.Parallel()

	err := &BrokenReferenceError{Module: "Widgets.v3.1", References: []string{"A", "B"}}
	want := "Widgets.v3.1: one or more of the module's references could not be loaded: A, B"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrBrokenReference) {
		t.Error("should wrap ErrBrokenReference")
	}
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	if NewWriteError("Widgets", "/out", nil) != nil {
		t.Error("NewWriteError(nil cause) must return nil")
	}

	err := NewWriteError("Widgets", "/out/Widgets.3.1.nupkg", fs.ErrPermission)
	if !errors.Is(err, ErrWrite) || !errors.Is(err, fs.ErrPermission) {
		t.Errorf("error chain = %v", err)
	}
	var we *WriteError
	if !errors.As(err, &we) || we.Package != "Widgets" {
		t.Errorf("errors.As(*WriteError) failed for %v", err)
	}
}
