// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the nupackager CLI.
//
// The root command is run through fang. `pack` builds NuGet packages for
// every module of a directory, `describe` shows how a single module would be
// packaged and `config` manages configuration files.
package cmd
