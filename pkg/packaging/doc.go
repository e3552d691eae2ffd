// SPDX-License-Identifier: MPL-2.0

// Package packaging turns a described binary module into package metadata.
//
// It holds the three pure steps of a packaging pass:
//
//   - PackageID derives a version-tag-free package identity from a raw module
//     name and its version.
//   - Classifier resolves every declared reference through a modmeta.Loader
//     and sorts it into a local dependency, a framework requirement, a broken
//     reference, or nothing at all, according to a Policy.
//   - Synthesize assembles PackageMetadata from the module descriptor and its
//     classified references.
//
// Nothing in this package writes files or talks to the user; the batch driver
// and the package writers live in internal/.
package packaging
