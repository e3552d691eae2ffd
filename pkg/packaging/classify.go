// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/googol/nupackager/pkg/modmeta"
)

const (
	// KindLocal is a sibling module from the same family; it becomes a
	// package dependency.
	KindLocal Kind = "local"
	// KindFramework is an allow-listed platform component; it becomes a
	// framework requirement.
	KindFramework Kind = "framework"
	// KindBroken is a reference that could not be resolved at all.
	KindBroken Kind = "broken"
)

// ErrInvalidKind is returned when a Kind value is not recognized.
var ErrInvalidKind = errors.New("invalid reference kind")

type (
	// Kind is the classification of one declared reference.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	InvalidKindError struct {
		Value Kind
	}

	// Reference is one classified declaration. Descriptor is the resolved
	// module and is the zero value for broken references, which keep only
	// the declaration and the load failure.
	Reference struct {
		Kind        Kind
		Declaration modmeta.Declaration
		Descriptor  modmeta.Descriptor
		Cause       error
	}

	// References is a classified reference list in declaration order.
	References []Reference

	// Resolution is the outcome of resolving a single declaration through a
	// Loader: either a descriptor or the error the loader returned.
	Resolution struct {
		Descriptor modmeta.Descriptor
		Err        error
	}

	// Classifier resolves declarations through a Loader and classifies them
	// under a Policy.
	Classifier struct {
		loader modmeta.Loader
		policy Policy
	}
)

// Error implements the error interface for InvalidKindError.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid reference kind %q (valid: local, framework, broken)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is one of the defined kinds.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindLocal, KindFramework, KindBroken:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: k}}
	}
}

// Name returns the raw name the reference was declared with.
func (r Reference) Name() string { return r.Declaration.Name }

// PackageID returns the normalized id of a local dependency, or "" for any
// other kind.
func (r Reference) PackageID() string {
	if r.Kind != KindLocal {
		return ""
	}
	return DescriptorID(r.Descriptor)
}

// NewClassifier creates a Classifier.
func NewClassifier(loader modmeta.Loader, policy Policy) *Classifier {
	return &Classifier{loader: loader, policy: policy}
}

// Classify resolves every declaration in order and returns the kept
// references. Broken references are kept in the result; use Err to turn them
// into a module-fatal error. The returned error is non-nil only when ctx is
// cancelled.
func (c *Classifier) Classify(ctx context.Context, decls []modmeta.Declaration) (References, error) {
	refs := make(References, 0, len(decls))
	for _, decl := range decls {
		if err := ctx.Err(); err != nil {
			return refs, fmt.Errorf("classify references canceled: %w", err)
		}

		desc, err := c.loader.Resolve(ctx, decl)
		ref, keep := Decide(c.policy, decl, Resolution{Descriptor: desc, Err: err})
		if !keep {
			slog.Debug("dropping reference", "reference", decl.Name, "origin", desc.Origin)
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Decide is the per-reference decision table:
//
//   - resolution failed              -> broken, kept
//   - local and family-prefixed      -> local dependency, kept
//   - local otherwise                -> dropped
//   - platform and allow-listed      -> framework requirement, kept
//   - platform otherwise             -> dropped
//
// A resolution with an unrecognized origin is treated as broken.
func Decide(policy Policy, decl modmeta.Declaration, res Resolution) (Reference, bool) {
	if res.Err != nil {
		return Reference{Kind: KindBroken, Declaration: decl, Cause: res.Err}, true
	}

	switch res.Descriptor.Origin {
	case modmeta.OriginLocal:
		if !policy.IsManaged(decl.Name) {
			return Reference{}, false
		}
		return Reference{Kind: KindLocal, Declaration: decl, Descriptor: res.Descriptor}, true
	case modmeta.OriginPlatform:
		if !policy.IsAllowedFramework(decl.Name) {
			return Reference{}, false
		}
		return Reference{Kind: KindFramework, Declaration: decl, Descriptor: res.Descriptor}, true
	default:
		_, errs := res.Descriptor.Origin.IsValid()
		return Reference{Kind: KindBroken, Declaration: decl, Cause: errors.Join(errs...)}, true
	}
}

// OfKind returns the references of kind k in order.
func (rs References) OfKind(k Kind) References {
	var out References
	for _, r := range rs {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// Broken returns the broken references in order.
func (rs References) Broken() References { return rs.OfKind(KindBroken) }

// Err returns a *BrokenReferenceError naming every broken reference, or nil
// when none are broken.
func (rs References) Err(module string) error {
	broken := rs.Broken()
	if len(broken) == 0 {
		return nil
	}
	names := make([]string, len(broken))
	causes := make([]error, len(broken))
	for i, r := range broken {
		names[i] = r.Name()
		causes[i] = r.Cause
	}
	return &BrokenReferenceError{Module: module, References: names, Causes: causes}
}
