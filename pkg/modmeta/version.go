// SPDX-License-Identifier: MPL-2.0

package modmeta

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	minVersionComponents = 2
	maxVersionComponents = 4
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid module version")

type (
	// Version is a module version made of two to four non-negative integer
	// components (major.minor[.build[.revision]]). Components records how many
	// were declared so String reproduces the declared form.
	Version struct {
		Major      int
		Minor      int
		Build      int
		Revision   int
		Components int
	}

	// InvalidVersionError is returned when a version string cannot be parsed.
	InvalidVersionError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid module version %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// NewVersion builds a Version from explicit components.
func NewVersion(components ...int) (Version, error) {
	if len(components) < minVersionComponents || len(components) > maxVersionComponents {
		return Version{}, &InvalidVersionError{
			Value:  fmt.Sprint(components),
			Reason: fmt.Sprintf("expected %d to %d components", minVersionComponents, maxVersionComponents),
		}
	}
	var parts [maxVersionComponents]int
	for i, c := range components {
		if c < 0 {
			return Version{}, &InvalidVersionError{Value: fmt.Sprint(components), Reason: "components must be non-negative"}
		}
		parts[i] = c
	}
	return Version{
		Major:      parts[0],
		Minor:      parts[1],
		Build:      parts[2],
		Revision:   parts[3],
		Components: len(components),
	}, nil
}

// MustVersion is like ParseVersion but panics on error. Intended for tests
// and package-level defaults.
func MustVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseVersion parses a dotted version such as "14.2" or "14.2.20142.2071".
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, &InvalidVersionError{Value: s, Reason: "empty"}
	}

	fields := strings.Split(trimmed, ".")
	if len(fields) < minVersionComponents || len(fields) > maxVersionComponents {
		return Version{}, &InvalidVersionError{
			Value:  s,
			Reason: fmt.Sprintf("expected %d to %d dot-separated components", minVersionComponents, maxVersionComponents),
		}
	}

	components := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || strings.HasPrefix(f, "+") || strings.HasPrefix(f, "-") {
			return Version{}, &InvalidVersionError{Value: s, Reason: fmt.Sprintf("component %q is not a non-negative integer", f)}
		}
		components = append(components, n)
	}

	return NewVersion(components...)
}

// IsZero reports whether v is the zero Version (no components declared).
func (v Version) IsZero() bool { return v.Components == 0 }

// IsValid returns whether the Version has a supported component count and
// non-negative components.
func (v Version) IsValid() (bool, []error) {
	if v.Components < minVersionComponents || v.Components > maxVersionComponents {
		return false, []error{&InvalidVersionError{Value: v.String(), Reason: "unsupported component count"}}
	}
	if v.Major < 0 || v.Minor < 0 || v.Build < 0 || v.Revision < 0 {
		return false, []error{&InvalidVersionError{Value: v.String(), Reason: "components must be non-negative"}}
	}
	return true, nil
}

// Tag returns the version marker build tooling embeds in binary names,
// ".v<major>.<minor>".
func (v Version) Tag() string {
	return fmt.Sprintf(".v%d.%d", v.Major, v.Minor)
}

// Equal reports whether both versions declare the same components.
// A two-component "3.1" and a four-component "3.1.0.0" are different.
func (v Version) Equal(o Version) bool {
	return v == o
}

// String returns the dotted form with as many components as were declared.
func (v Version) String() string {
	if v.IsZero() {
		return ""
	}
	all := [maxVersionComponents]int{v.Major, v.Minor, v.Build, v.Revision}
	n := min(max(v.Components, minVersionComponents), maxVersionComponents)
	parts := make([]string, n)
	for i := range n {
		parts[i] = strconv.Itoa(all[i])
	}
	return strings.Join(parts, ".")
}
