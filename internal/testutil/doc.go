// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the filesystem helpers (MustChdir, MustMkdirAll, MustWriteFile) it
// can lay out a drop directory of fake binaries with descriptor sidecars
// (WriteModule), which the catalog, batch and CLI tests share.
package testutil
