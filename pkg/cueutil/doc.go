// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// decodes them into Go values.
//
// Both the configuration file and the module descriptor sidecars go through
// the same flow:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the user document and unify it with that definition
//  3. Validate and decode into the target type
//
// Errors carry the file name and the offending field path
// (e.g. "Widgets.dll.module.cue: references[1].name: incomplete value").
package cueutil
