// SPDX-License-Identifier: MPL-2.0

// Package catalog implements modmeta.Loader on top of descriptor sidecars.
//
// Every binary module <file> is described by a CUE document <file>.module.cue
// declaring its name, version and references. Nothing in the binary itself is
// read or executed.
//
// References are resolved the way a runtime binds assemblies: first the
// application directory (the directory being packaged), then any platform
// directories, then the configured list of platform component names.
package catalog
