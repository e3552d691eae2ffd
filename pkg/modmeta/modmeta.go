// SPDX-License-Identifier: MPL-2.0

package modmeta

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// OriginLocal marks a module shipped alongside the modules being packaged.
	OriginLocal Origin = "local"
	// OriginPlatform marks a component provided by the target runtime environment.
	OriginPlatform Origin = "platform"
)

var (
	// ErrInvalidOrigin is returned when an Origin value is not recognized.
	ErrInvalidOrigin = errors.New("invalid module origin")
	// ErrInvalidDescriptor is the sentinel error wrapped by InvalidDescriptorError.
	ErrInvalidDescriptor = errors.New("invalid module descriptor")
	// ErrLoad is the sentinel error wrapped by LoadError.
	ErrLoad = errors.New("module metadata could not be loaded")
)

type (
	// Origin tells where a resolved module comes from.
	Origin string

	// InvalidOriginError is returned when an Origin value is not recognized.
	InvalidOriginError struct {
		Value Origin
	}

	// Descriptor is the identity of a module: its raw declared name, its
	// version and where it was resolved from. Identity is (Name, Version).
	Descriptor struct {
		Name    string
		Version Version
		Origin  Origin
	}

	// InvalidDescriptorError collects field-level validation errors.
	InvalidDescriptorError struct {
		FieldErrors []error
	}

	// Declaration is one raw dependency declared in a module's metadata,
	// before it has been resolved or classified. Version is the zero Version
	// when the declaration does not request one.
	Declaration struct {
		Name    string
		Version Version
	}

	// Module is a described binary module: its own descriptor, the file it
	// was read from and its declarations in metadata order.
	Module struct {
		Descriptor   Descriptor
		Path         string
		Declarations []Declaration
	}

	// Loader reads module metadata without executing module code.
	//
	// Describe loads the module stored at path. Resolve locates the module a
	// declaration refers to. Both return a *LoadError when the target cannot
	// be located or read.
	Loader interface {
		Describe(ctx context.Context, path string) (*Module, error)
		Resolve(ctx context.Context, decl Declaration) (Descriptor, error)
	}

	// LoadError reports that a module or a referenced module could not be
	// described. Target is the path or reference name that was requested.
	LoadError struct {
		Target string
		Cause  error
	}
)

// Error implements the error interface for InvalidOriginError.
func (e *InvalidOriginError) Error() string {
	return fmt.Sprintf("invalid module origin %q (valid: local, platform)", e.Value)
}

// Unwrap returns ErrInvalidOrigin for errors.Is() compatibility.
func (e *InvalidOriginError) Unwrap() error { return ErrInvalidOrigin }

// String returns the string representation of the Origin.
func (o Origin) String() string { return string(o) }

// IsValid returns whether the Origin is one of the defined origins.
func (o Origin) IsValid() (bool, []error) {
	switch o {
	case OriginLocal, OriginPlatform:
		return true, nil
	default:
		return false, []error{&InvalidOriginError{Value: o}}
	}
}

// Error implements the error interface for InvalidDescriptorError.
func (e *InvalidDescriptorError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid module descriptor: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidDescriptor for errors.Is() compatibility.
func (e *InvalidDescriptorError) Unwrap() error { return ErrInvalidDescriptor }

// IsValid validates name, version and origin.
func (d Descriptor) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name must be non-empty"))
	}
	if valid, fieldErrs := d.Version.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := d.Origin.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDescriptorError{FieldErrors: errs}}
	}
	return true, nil
}

// String returns "name, version" in the style of a display name.
func (d Descriptor) String() string {
	if d.Version.IsZero() {
		return d.Name
	}
	return d.Name + ", " + d.Version.String()
}

// String returns the declared name, with the requested version when present.
func (d Declaration) String() string {
	if d.Version.IsZero() {
		return d.Name
	}
	return d.Name + ", " + d.Version.String()
}

// NewLoadError wraps cause as a LoadError for target.
func NewLoadError(target string, cause error) *LoadError {
	return &LoadError{Target: target, Cause: cause}
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("cannot load %s", e.Target)
	}
	return fmt.Sprintf("cannot load %s: %v", e.Target, e.Cause)
}

// Unwrap exposes both the ErrLoad sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrLoad}
	}
	return []error{ErrLoad, e.Cause}
}
