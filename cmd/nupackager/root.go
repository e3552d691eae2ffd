// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/googol/nupackager/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

// newRootCommand builds the command tree for app.
func newRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "nupackager",
		Short: "Package a family of .NET assemblies as NuGet packages",
		Long: TitleStyle.Render("nupackager") + SubtitleStyle.Render(" - package assembly families for NuGet") + `

nupackager scans a directory for the binaries of one family, works out which
references become package dependencies and which become framework
requirements, and writes one package per binary.

` + SubtitleStyle.Render("Examples:") + `
  nupackager pack ./bin/Release          Build .nupkg files next to the binaries
  nupackager pack --dry-run              Show what would be packaged
  nupackager describe Widgets.v3.1.dll   Explain how one binary is packaged
  nupackager config init                 Create nupackager.cue
  nupackager issues                      List the help pages for known failures`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			app.verbose = flags.verbose
			configureLogging(app.stderr, app.verbose)
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: user config.cue, then nupackager.cue in the scanned directory)")

	root.AddCommand(
		newPackCommand(app, flags),
		newDescribeCommand(app, flags),
		newConfigCommand(app, flags),
		newIssuesCommand(app),
	)
	return root
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFatal)
	}
}

// formatErrorForDisplay uses ActionableError.Format when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
