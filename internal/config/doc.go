// SPDX-License-Identifier: MPL-2.0

// Package config handles nupackager configuration using Viper with CUE as the
// file format.
//
// Defaults live in Viper. A user file (config.cue under the platform config
// directory, e.g. $XDG_CONFIG_HOME/nupackager) is merged first, then a
// project file (nupackager.cue in the scanned directory). An explicit
// --config path replaces both. Every file is validated against the embedded
// #Config schema (config_schema.cue) before it is merged.
package config
