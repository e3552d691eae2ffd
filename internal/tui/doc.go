// SPDX-License-Identifier: MPL-2.0

// Package tui wraps charmbracelet/huh prompts used by nupackager.
//
// Prompts fall back to huh's accessible line mode when stdin is not a
// terminal or ACCESSIBLE is set, and then write to stderr so that piped
// stdout stays clean.
package tui
