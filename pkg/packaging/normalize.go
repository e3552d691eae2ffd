// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"strings"

	"github.com/googol/nupackager/pkg/modmeta"
)

// PackageID returns the canonical package id for a module named name at
// version v. A trailing ".v<major>.<minor>" marker is stripped only when it
// matches v's own major and minor exactly; any other name is returned as is.
func PackageID(name string, v modmeta.Version) string {
	if v.IsZero() {
		return name
	}
	return strings.TrimSuffix(name, v.Tag())
}

// DescriptorID is PackageID applied to a descriptor's name and version.
func DescriptorID(d modmeta.Descriptor) string {
	return PackageID(d.Name, d.Version)
}
