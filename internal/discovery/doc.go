// SPDX-License-Identifier: MPL-2.0

// Package discovery lists the candidate module binaries of a scan directory.
package discovery
