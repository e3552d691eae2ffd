// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when module binaries or their descriptor
// sidecars change in a drop directory.
//
// Events are coalesced for a debounce period so a build that copies many
// binaries triggers one callback with the full set of changed names.
package watch
