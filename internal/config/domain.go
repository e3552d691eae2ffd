// SPDX-License-Identifier: MPL-2.0

package config

import (
	"log/slog"
	"strings"

	"github.com/googol/nupackager/pkg/modmeta"
	"github.com/googol/nupackager/pkg/packaging"
)

// Policy builds the classification policy from the family prefix and the
// framework allow-list.
func (c Config) Policy() (packaging.Policy, error) {
	return packaging.NewPolicy(c.Family.Prefix, c.Framework.Allow)
}

// ManifestTemplate builds the fixed manifest values. The description
// template falls back to the stock family description if it fails to
// execute for a module.
func (c Config) ManifestTemplate() (packaging.ManifestTemplate, error) {
	tmpl, err := c.Manifest.DescriptionTemplate()
	if err != nil {
		return packaging.ManifestTemplate{}, err
	}

	family := c.Family.Name
	fallback := packaging.FamilyDescriber(family)
	describe := func(d modmeta.Descriptor) string {
		var b strings.Builder
		data := DescriptionData{
			Family:  family,
			Name:    d.Name,
			ID:      packaging.DescriptorID(d),
			Version: d.Version.String(),
		}
		if execErr := tmpl.Execute(&b, data); execErr != nil {
			slog.Warn("description template failed, using default", "module", d.Name, "error", execErr)
			return fallback(d)
		}
		return b.String()
	}

	return packaging.ManifestTemplate{Authors: c.Authors(), Describe: describe}, nil
}
