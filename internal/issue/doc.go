// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages for the failures a packaging run can surface.
//
// ActionableError carries the failed operation, the resource involved and a
// list of suggestions. Catalog entries are rendered with glamour by the CLI
// when a command fails with a known issue.
package issue
