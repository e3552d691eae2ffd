// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// configureLogging routes slog through a charm logger on w. Library
// packages log with slog; verbose lowers the level to debug.
func configureLogging(w io.Writer, verbose bool) {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "nupackager",
		Level:  level,
	})
	slog.SetDefault(slog.New(logger))
}
