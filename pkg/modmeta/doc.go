// SPDX-License-Identifier: MPL-2.0

// Package modmeta defines the identity of a compiled binary module as seen
// through its metadata: name, version, origin and the ordered list of
// references it declares.
//
// The Loader interface is the boundary to whatever mechanism actually reads
// the metadata. Implementations must never execute module code; they only
// introspect declared identity, version and references.
package modmeta
