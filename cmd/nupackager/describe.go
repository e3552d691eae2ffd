// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/googol/nupackager/internal/catalog"
	"github.com/googol/nupackager/internal/issue"
	"github.com/googol/nupackager/internal/nuspec"
	"github.com/googol/nupackager/pkg/modmeta"
	"github.com/googol/nupackager/pkg/packaging"
)

type describeFlags struct {
	prefix          string
	allow           []string
	targetFramework string
	asYAML          bool
}

// dropped marks references left out of the package in describe output.
const dropped packaging.Kind = "dropped"

type describedReference struct {
	decl   modmeta.Declaration
	kind   packaging.Kind
	ref    packaging.Reference
	origin modmeta.Origin
}

func newDescribeCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &describeFlags{}

	cmd := &cobra.Command{
		Use:   "describe <file>",
		Short: "Explain how one module would be packaged",
		Long: `Print the descriptor of one module, how each of its references is
classified, and the manifest that ` + CmdStyle.Render("pack") + ` would write for it.

Nothing is written. The command exits with status 1 when the module has a
reference that cannot be loaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, app, root, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "family prefix of references that become package dependencies")
	cmd.Flags().StringSliceVar(&flags.allow, "allow", nil, "platform component that becomes a framework requirement (repeatable)")
	cmd.Flags().StringVar(&flags.targetFramework, "target-framework", "", "target framework moniker, e.g. net40")
	cmd.Flags().BoolVar(&flags.asYAML, "yaml", false, "print the package metadata as YAML instead of a nuspec manifest")

	return cmd
}

func runDescribe(cmd *cobra.Command, app *App, root *rootFlags, flags *describeFlags, file string) error {
	ctx := cmd.Context()
	dir := filepath.Dir(file)

	cfg, err := loadConfig(cmd, app, root, dir)
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}
	changed := cmd.Flags().Changed
	if changed("prefix") {
		cfg.Family.Prefix = flags.prefix
	}
	if changed("allow") {
		cfg.Framework.Allow = flags.allow
	}
	if changed("target-framework") {
		cfg.Framework.Target = flags.targetFramework
	}

	policy, err := cfg.Policy()
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}
	tmpl, err := cfg.ManifestTemplate()
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
	}

	loader := catalog.New(dir,
		catalog.WithPlatformComponents(cfg.Platform.Components...),
		catalog.WithPlatformDirs(cfg.Platform.Dirs...),
	)
	module, err := loader.Describe(ctx, file)
	if err != nil {
		return app.fail(cmd, newServiceError(err, issue.DescriptorNotFoundId))
	}

	described := make([]describedReference, 0, len(module.Declarations))
	var kept packaging.References
	for _, decl := range module.Declarations {
		desc, resolveErr := loader.Resolve(ctx, decl)
		ref, keep := packaging.Decide(policy, decl, packaging.Resolution{Descriptor: desc, Err: resolveErr})
		d := describedReference{decl: decl, ref: ref, kind: dropped, origin: desc.Origin}
		if keep {
			d.kind = ref.Kind
			kept = append(kept, ref)
		}
		described = append(described, d)
	}

	w := app.stdout
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Module"), module.Descriptor)
	fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("file:"), module.Path)
	fmt.Fprintf(w, "  %s %s\n\n", SubtitleStyle.Render("package:"), CmdStyle.Render(packaging.DescriptorID(module.Descriptor)))

	fmt.Fprintln(w, TitleStyle.Render("References"))
	if len(described) == 0 {
		fmt.Fprintf(w, "  %s none\n", infoIcon)
	}
	for _, d := range described {
		printDescribedReference(w, d)
	}
	fmt.Fprintln(w)

	md, err := packaging.Synthesize(module.Descriptor, kept, tmpl)
	if err != nil {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		fmt.Fprintf(app.stderr, "%s %s\n", errorIcon, err)
		if app.verbose {
			renderIssue(app.stderr, issue.BrokenReferenceId)
		}
		return &ExitError{Code: ExitFailures, Err: err}
	}

	fmt.Fprintln(w, TitleStyle.Render("Manifest"))
	if flags.asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(md); err != nil {
			return app.fail(cmd, newServiceError(err, 0))
		}
		return enc.Close()
	}
	placement := packaging.Placement(file, cfg.Framework.Target)
	doc := nuspec.NewDocument(md, []packaging.FilePlacement{placement}, cfg.Framework.Target)
	if err := doc.Encode(w); err != nil {
		return app.fail(cmd, newServiceError(err, 0))
	}
	return nil
}

func printDescribedReference(w io.Writer, d describedReference) {
	kind := fmt.Sprintf("%-9s", d.kind)
	switch d.kind {
	case packaging.KindLocal:
		fmt.Fprintf(w, "  %s %s %s -> %s %s\n", successIcon, kind, d.decl, CmdStyle.Render(d.ref.PackageID()), d.ref.Descriptor.Version)
	case packaging.KindFramework:
		fmt.Fprintf(w, "  %s %s %s\n", successIcon, kind, d.decl)
	case packaging.KindBroken:
		cause := d.ref.Cause
		var le *modmeta.LoadError
		if errors.As(cause, &le) && le.Cause != nil {
			cause = le.Cause
		}
		fmt.Fprintf(w, "  %s %s %s: %v\n", errorIcon, ErrorStyle.Render(kind), d.decl, cause)
	default:
		fmt.Fprintf(w, "  %s %s %s %s\n", infoIcon, SubtitleStyle.Render(kind), d.decl, SubtitleStyle.Render("("+d.origin.String()+")"))
	}
}
