// SPDX-License-Identifier: MPL-2.0

// Package nuspec persists synthesized package metadata, either as a NuGet
// manifest document (.nuspec) or as a complete package archive (.nupkg).
package nuspec
