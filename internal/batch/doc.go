// SPDX-License-Identifier: MPL-2.0

// Package batch drives a packaging run over every module of a directory.
//
// Modules are processed one at a time. Each module is described, its
// references are classified, its manifest is synthesized and then written.
// A failure aborts that module only; the run records it in the Summary and
// moves on to the next module.
package batch
