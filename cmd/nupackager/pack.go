// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/googol/nupackager/internal/batch"
	"github.com/googol/nupackager/internal/catalog"
	"github.com/googol/nupackager/internal/config"
	"github.com/googol/nupackager/internal/discovery"
	"github.com/googol/nupackager/internal/issue"
	"github.com/googol/nupackager/internal/nuspec"
	"github.com/googol/nupackager/internal/packer"
	"github.com/googol/nupackager/internal/watch"
	"github.com/googol/nupackager/pkg/packaging"
)

type packFlags struct {
	output            string
	format            string
	prefix            string
	pattern           string
	allow             []string
	targetFramework   string
	packer            string
	promptDescription bool
	dryRun            bool
	report            string
	watch             bool
}

func newPackCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &packFlags{}

	cmd := &cobra.Command{
		Use:   "pack [dir]",
		Short: "Build a package for every module in a directory",
		Long: `Build a package for every module in a directory (default: the current one).

Each binary matching the family pattern is described through its
` + CmdStyle.Render("<binary>.module.cue") + ` descriptor. References to other family
modules become package dependencies, allow-listed platform components
become framework requirements, everything else is left out. A module with
a reference that cannot be loaded is not packaged; the run goes on with the
next module and exits with status 1.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runPack(cmd, app, root, flags, dir)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output directory (default: the scanned directory)")
	f.StringVar(&flags.format, "format", "", "output format: nupkg or nuspec")
	f.StringVar(&flags.prefix, "prefix", "", "family prefix of references that become package dependencies")
	f.StringVar(&flags.pattern, "pattern", "", "file pattern selecting the modules to package")
	f.StringSliceVar(&flags.allow, "allow", nil, "platform component that becomes a framework requirement (repeatable)")
	f.StringVar(&flags.targetFramework, "target-framework", "", "target framework moniker, e.g. net40")
	f.StringVar(&flags.packer, "packer", "", "external packer run for every manifest (nuspec format only)")
	f.BoolVar(&flags.promptDescription, "prompt-description", false, "ask for each package description")
	f.BoolVar(&flags.dryRun, "dry-run", false, "classify and synthesize only; write nothing")
	f.StringVar(&flags.report, "report", "", "write a YAML run report to this file")
	f.BoolVarP(&flags.watch, "watch", "w", false, "package again whenever a module or descriptor changes")

	return cmd
}

func runPack(cmd *cobra.Command, app *App, root *rootFlags, flags *packFlags, dir string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, app, root, dir)
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}
	applyPackFlags(cmd, cfg, flags)
	if valid, errs := cfg.IsValid(); !valid {
		return app.fail(cmd, newServiceError(errors.Join(errs...), issue.ConfigLoadFailedId))
	}

	policy, err := cfg.Policy()
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}
	tmpl, err := cfg.ManifestTemplate()
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}

	outDir := cfg.Output.Dir
	if outDir == "" {
		outDir = dir
	}
	format := nuspec.Format(cfg.Output.Format)

	opts := batch.Options{
		Pattern:         cfg.Family.Pattern,
		TargetFramework: cfg.Framework.Target,
		Template:        tmpl,
		DryRun:          flags.dryRun,
		OnResult:        func(r batch.Result) { app.printResult(r) },
	}
	if !flags.dryRun {
		opts.Writer, err = nuspec.New(format, nuspec.Options{
			OutputDir:       outDir,
			SourceDir:       dir,
			TargetFramework: cfg.Framework.Target,
		})
		if err != nil {
			return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
		}

		switch {
		case cfg.Packer.Command == "":
		case format != nuspec.FormatNuspec:
			slog.Warn("packer is only used with the nuspec format, ignoring it", "packer", cfg.Packer.Command)
		default:
			p, packerErr := packer.New(cfg.Packer.Command, cfg.Packer.Args)
			if packerErr != nil {
				return app.fail(cmd, newServiceError(packerErr, issue.PackerNotFoundId))
			}
			opts.Packer = p
		}
	}
	if flags.promptDescription {
		opts.Descriptions = app.Prompt(app.stderr)
	}

	newRunner := func() (*batch.Runner, error) {
		loader := catalog.New(dir,
			catalog.WithPlatformComponents(cfg.Platform.Components...),
			catalog.WithPlatformDirs(cfg.Platform.Dirs...),
		)
		return batch.NewRunner(loader, policy, opts)
	}
	runner, err := newRunner()
	if err != nil {
		return app.fail(cmd, newServiceError(err, 0))
	}

	absDir, absErr := filepath.Abs(dir)
	if absErr != nil {
		absDir = dir
	}
	fmt.Fprintf(app.stdout, "%s %s\n\n", TitleStyle.Render("Packaging"), CmdStyle.Render(absDir))

	summary, runErr := runner.Run(ctx, dir)
	if summary == nil {
		return app.fail(cmd, newServiceError(runErr, discoveryIssue(runErr)))
	}
	if err := app.finishRun(summary, flags.report); err != nil {
		return app.fail(cmd, newServiceError(err, issue.WriteFailedId))
	}

	if flags.watch && runErr == nil {
		return app.watchAndPack(cmd, dir, cfg.Family.Pattern, newRunner, flags.report)
	}

	switch {
	case runErr != nil:
		return app.fail(cmd, newServiceError(runErr, 0))
	case len(summary.Results) == 0:
		app.warnNoModules(dir, cfg.Family.Pattern)
		return nil
	case summary.HasFailures():
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		if app.verbose {
			renderIssue(app.stderr, failureIssue(summary))
		}
		return &ExitError{Code: ExitFailures}
	default:
		return nil
	}
}

// finishRun prints the totals and writes the optional report.
func (a *App) finishRun(summary *batch.Summary, reportPath string) error {
	a.printSummary(summary)
	if reportPath == "" {
		return nil
	}
	if err := summary.WriteReportFile(reportPath); err != nil {
		return issue.WrapWithContext(err, "write run report", reportPath)
	}
	fmt.Fprintf(a.stdout, "%s report written to %s\n", infoIcon, reportPath)
	return nil
}

func (a *App) warnNoModules(dir, pattern string) {
	fmt.Fprintf(a.stderr, "%s no file in %s matches %s\n", warningIcon, dir, pattern)
	if a.verbose {
		renderIssue(a.stderr, issue.NoModulesFoundId)
	}
}

// watchAndPack packages dir again after every change until interrupted.
func (a *App) watchAndPack(cmd *cobra.Command, dir, pattern string, newRunner func() (*batch.Runner, error), reportPath string) error {
	w, err := watch.New(watch.Config{
		Dir:     dir,
		Pattern: pattern,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(a.stdout, "\n%s changed: %s\n\n", infoIcon, strings.Join(changed, ", "))
			runner, err := newRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Run(ctx, dir)
			if summary != nil {
				if reportErr := a.finishRun(summary, reportPath); reportErr != nil {
					return reportErr
				}
			}
			return err
		},
	})
	if err != nil {
		return a.fail(cmd, newServiceError(issue.WrapWithOperation(err, "watch "+dir), 0))
	}

	fmt.Fprintf(a.stdout, "\n%s watching %s for changes (Ctrl+C to stop)\n", infoIcon, CmdStyle.Render(pattern))
	if err := w.Run(cmd.Context()); err != nil {
		return a.fail(cmd, newServiceError(err, 0))
	}
	return nil
}

func loadConfig(cmd *cobra.Command, app *App, root *rootFlags, projectDir string) (*config.Config, error) {
	cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: root.configPath,
		ProjectDir:     projectDir,
	})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose && !app.verbose {
		app.verbose = true
		configureLogging(app.stderr, true)
	}
	return cfg, nil
}

// applyPackFlags overrides configuration with every flag set on the command line.
func applyPackFlags(cmd *cobra.Command, cfg *config.Config, flags *packFlags) {
	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.Output.Dir = flags.output
	}
	if changed("format") {
		cfg.Output.Format = config.OutputFormat(flags.format)
	}
	if changed("prefix") {
		cfg.Family.Prefix = flags.prefix
	}
	if changed("pattern") {
		cfg.Family.Pattern = flags.pattern
	}
	if changed("allow") {
		cfg.Framework.Allow = flags.allow
	}
	if changed("target-framework") {
		cfg.Framework.Target = flags.targetFramework
	}
	if changed("packer") {
		cfg.Packer.Command = flags.packer
	}
}

func (a *App) printResult(r batch.Result) {
	if r.OK() {
		detail := ""
		if r.Output != "" {
			detail = " " + SubtitleStyle.Render(r.Output)
		}
		fmt.Fprintf(a.stdout, "%s %s... %s%s\n", successIcon, CmdStyle.Render(r.Name()), SuccessStyle.Render("DONE"), detail)
		return
	}

	fmt.Fprintf(a.stdout, "%s %s... %s\n", errorIcon, CmdStyle.Render(r.Name()), ErrorStyle.Render("FAILED"))
	if broken := r.BrokenReferences(); len(broken) > 0 {
		fmt.Fprintf(a.stdout, "    references that could not be loaded: %s\n", strings.Join(broken, ", "))
		if !a.verbose {
			return
		}
	}
	fmt.Fprintf(a.stdout, "    %s\n", SubtitleStyle.Render(r.Err.Error()))
}

func (a *App) printSummary(s *batch.Summary) {
	ok, failed := len(s.Succeeded()), len(s.Failed())
	verb := "packed"
	if s.DryRun {
		verb = "ready (dry run)"
	}

	fmt.Fprintln(a.stdout)
	line := SuccessStyle.Render(fmt.Sprintf("%d %s", ok, verb))
	if failed > 0 {
		line += ", " + ErrorStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	fmt.Fprintln(a.stdout, line)

	if failed > 0 {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("Failed modules:"))
		for _, r := range s.Failed() {
			fmt.Fprintf(a.stdout, "  %s %s\n", errorIcon, r.Name())
		}
	}
}

// discoveryIssue picks the help page for an error that stopped the run
// before any module was processed.
func discoveryIssue(err error) issue.Id {
	switch {
	case errors.Is(err, discovery.ErrInvalidPattern):
		return issue.NoModulesFoundId
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return 0
	default:
		return issue.ScanDirNotFoundId
	}
}

// failureIssue picks the help page that matches the first failure.
func failureIssue(s *batch.Summary) issue.Id {
	for _, r := range s.Failed() {
		switch {
		case errors.Is(r.Err, packaging.ErrBrokenReference):
			return issue.BrokenReferenceId
		case errors.Is(r.Err, packer.ErrPackerFailed):
			return issue.PackerFailedId
		case errors.Is(r.Err, packaging.ErrWrite):
			return issue.WriteFailedId
		case r.PackageID == "":
			return issue.DescriptorNotFoundId
		}
	}
	return 0
}
