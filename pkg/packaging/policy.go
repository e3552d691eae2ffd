// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidPolicy is the sentinel error wrapped by InvalidPolicyError.
	ErrInvalidPolicy = errors.New("invalid classification policy")

	// DefaultFrameworkAllowList holds the platform components the Infragistics
	// WPF family needs the consuming environment to guarantee.
	DefaultFrameworkAllowList = []string{
		"PresentationCore",
		"PresentationFramework",
		"System.Xaml",
		"WindowsBase",
	}
)

// DefaultFamilyPrefix is the name prefix of modules produced by the same family.
const DefaultFamilyPrefix = "Infragistics"

type (
	// Policy is the read-only configuration the Classifier consults: the
	// family prefix identifying managed local modules and the allow-list of
	// platform components worth declaring. Construct with NewPolicy; the zero
	// value manages nothing and allows nothing.
	Policy struct {
		familyPrefix string
		allowList    []string
		allowed      map[string]struct{}
	}

	// InvalidPolicyError is returned when a Policy cannot be built.
	InvalidPolicyError struct {
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid classification policy: %s", e.Reason)
}

// Unwrap returns ErrInvalidPolicy for errors.Is() compatibility.
func (e *InvalidPolicyError) Unwrap() error { return ErrInvalidPolicy }

// NewPolicy builds a Policy. familyPrefix must be non-empty; allow-list
// entries are matched exactly and blank entries are rejected.
func NewPolicy(familyPrefix string, frameworkAllowList []string) (Policy, error) {
	if strings.TrimSpace(familyPrefix) == "" {
		return Policy{}, &InvalidPolicyError{Reason: "family prefix must be non-empty"}
	}

	allowed := make(map[string]struct{}, len(frameworkAllowList))
	list := make([]string, 0, len(frameworkAllowList))
	for _, name := range frameworkAllowList {
		if strings.TrimSpace(name) == "" {
			return Policy{}, &InvalidPolicyError{Reason: "framework allow-list entries must be non-empty"}
		}
		if _, dup := allowed[name]; dup {
			continue
		}
		allowed[name] = struct{}{}
		list = append(list, name)
	}

	return Policy{familyPrefix: familyPrefix, allowList: list, allowed: allowed}, nil
}

// DefaultPolicy returns the Infragistics family policy.
func DefaultPolicy() Policy {
	p, err := NewPolicy(DefaultFamilyPrefix, DefaultFrameworkAllowList)
	if err != nil {
		panic(err)
	}
	return p
}

// FamilyPrefix returns the configured family prefix.
func (p Policy) FamilyPrefix() string { return p.familyPrefix }

// FrameworkAllowList returns a copy of the allow-list in configured order.
func (p Policy) FrameworkAllowList() []string { return slices.Clone(p.allowList) }

// IsManaged reports whether a local module name belongs to the family.
// The prefix test is case-insensitive.
func (p Policy) IsManaged(name string) bool {
	if p.familyPrefix == "" || len(name) < len(p.familyPrefix) {
		return false
	}
	return strings.EqualFold(name[:len(p.familyPrefix)], p.familyPrefix)
}

// IsAllowedFramework reports whether a platform component is on the allow-list.
func (p Policy) IsAllowedFramework(name string) bool {
	_, ok := p.allowed[name]
	return ok
}
