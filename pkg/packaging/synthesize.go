// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/googol/nupackager/pkg/modmeta"
)

type (
	// Dependency is a sibling package the package depends on.
	Dependency struct {
		ID      string `yaml:"id"`
		Version string `yaml:"version"`
	}

	// PackageMetadata is the synthesized description of one package.
	// Dependencies and FrameworkRequirements are nil, never empty, when the
	// module has no entries of that kind.
	PackageMetadata struct {
		ID                    string       `yaml:"id"`
		Version               string       `yaml:"version"`
		Authors               string       `yaml:"authors"`
		Description           string       `yaml:"description"`
		Dependencies          []Dependency `yaml:"dependencies,omitempty"`
		FrameworkRequirements []string     `yaml:"frameworkRequirements,omitempty"`
	}

	// FilePlacement maps a source file to its target directory inside the package.
	FilePlacement struct {
		Source string
		Target string
	}

	// Describer produces the package description for a module.
	Describer func(module modmeta.Descriptor) string

	// ManifestTemplate holds the fixed values stamped into every manifest.
	ManifestTemplate struct {
		Authors  string
		Describe Describer
	}
)

// FamilyDescriber returns a Describer producing the stock description
// "This package contains the <family> assembly <raw name>.".
func FamilyDescriber(family string) Describer {
	return func(module modmeta.Descriptor) string {
		return fmt.Sprintf("This package contains the %s assembly %s.", family, module.Name)
	}
}

// WithDescription returns a copy of t that describes every module as text.
func (t ManifestTemplate) WithDescription(text string) ManifestTemplate {
	t.Describe = func(modmeta.Descriptor) string { return text }
	return t
}

// Synthesize builds the PackageMetadata for module from its classified
// references. It fails with a *BrokenReferenceError if refs contains any
// broken reference, and with ErrEmptyPackageID if the module or one of its
// dependencies has no usable package ID.
func Synthesize(module modmeta.Descriptor, refs References, tmpl ManifestTemplate) (*PackageMetadata, error) {
	if err := refs.Err(module.Name); err != nil {
		return nil, err
	}
	id := DescriptorID(module)
	if id == "" {
		return nil, fmt.Errorf("module %q: %w", module.Name, ErrEmptyPackageID)
	}

	md := &PackageMetadata{
		ID:      id,
		Version: module.Version.String(),
		Authors: tmpl.Authors,
	}
	if tmpl.Describe != nil {
		md.Description = tmpl.Describe(module)
	}

	for _, r := range refs {
		switch r.Kind {
		case KindLocal:
			depID := r.PackageID()
			if depID == "" {
				return nil, fmt.Errorf("module %q: reference %q: %w", module.Name, r.Name(), ErrEmptyPackageID)
			}
			md.Dependencies = append(md.Dependencies, Dependency{
				ID:      depID,
				Version: r.Descriptor.Version.String(),
			})
		case KindFramework:
			md.FrameworkRequirements = append(md.FrameworkRequirements, r.Name())
		}
	}

	return md, nil
}

// Placement returns the single file placement for a module binary: its base
// name under lib/<targetFramework>.
func Placement(modulePath, targetFramework string) FilePlacement {
	return FilePlacement{
		Source: filepath.Base(modulePath),
		Target: path.Join("lib", targetFramework),
	}
}

// FileName returns "<id>.<version><ext>", the conventional artifact name.
func (m *PackageMetadata) FileName(ext string) string {
	return m.ID + "." + m.Version + ext
}
