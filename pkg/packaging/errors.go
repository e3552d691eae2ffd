// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBrokenReference is the sentinel error wrapped by BrokenReferenceError.
	ErrBrokenReference = errors.New("one or more references could not be loaded")
	// ErrWrite is the sentinel error wrapped by WriteError.
	ErrWrite = errors.New("package could not be written")
	// ErrEmptyPackageID is returned when a name normalizes to an empty
	// package ID, e.g. a module named ".v3.1".
	ErrEmptyPackageID = errors.New("name normalizes to an empty package id")
)

type (
	// BrokenReferenceError aggregates every unresolvable reference of a module.
	// References and Causes are parallel and in declaration order.
	BrokenReferenceError struct {
		Module     string
		References []string
		Causes     []error
	}

	// WriteError reports that persisting a package or manifest failed.
	WriteError struct {
		Package string
		Path    string
		Cause   error
	}
)

// Error implements the error interface.
func (e *BrokenReferenceError) Error() string {
	return fmt.Sprintf("%s: one or more of the module's references could not be loaded: %s",
		e.Module, strings.Join(e.References, ", "))
}

// Unwrap exposes ErrBrokenReference and every individual load failure.
func (e *BrokenReferenceError) Unwrap() []error {
	errs := []error{ErrBrokenReference}
	for _, c := range e.Causes {
		if c != nil {
			errs = append(errs, c)
		}
	}
	return errs
}

// NewWriteError wraps cause as a WriteError. It returns nil when cause is nil.
func NewWriteError(pkg, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &WriteError{Package: pkg, Path: path, Cause: cause}
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("write package %s to %s: %v", e.Package, e.Path, e.Cause)
	}
	return fmt.Sprintf("write package %s: %v", e.Package, e.Cause)
}

// Unwrap exposes ErrWrite and the underlying cause.
func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Cause} }
