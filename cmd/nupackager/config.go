// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/googol/nupackager/internal/config"
	"github.com/googol/nupackager/internal/issue"
)

func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create configuration",
		Long: `Inspect and create nupackager configuration.

Configuration is read from the user file (` + CmdStyle.Render(config.ConfigFileName) + ` in the user config
directory) and then from ` + CmdStyle.Render(config.ProjectFileName) + ` in the scanned directory; later
values win. --config replaces both.`,
	}

	cmd.AddCommand(
		newConfigShowCommand(app, root),
		newConfigInitCommand(app),
		newConfigDumpCommand(app, root),
	)
	return cmd
}

func newConfigShowCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [dir]",
		Short: "Show the effective configuration and where it came from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			cfg, sources, err := config.LoadWithSources(cmd.Context(), config.LoadOptions{
				ConfigFilePath: root.configPath,
				ProjectDir:     dir,
			})
			if err != nil {
				return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
			}

			w := app.stdout
			fmt.Fprintln(w, TitleStyle.Render("Sources"))
			if len(sources) == 0 {
				fmt.Fprintf(w, "  %s built-in defaults\n", infoIcon)
			}
			for _, s := range sources {
				fmt.Fprintf(w, "  %s %s\n", infoIcon, s)
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, TitleStyle.Render("Settings"))
			rows := [][2]string{
				{"family.name", cfg.Family.Name},
				{"family.prefix", cfg.Family.Prefix},
				{"family.pattern", cfg.Family.Pattern},
				{"framework.allow", strings.Join(cfg.Framework.Allow, ", ")},
				{"framework.target", cfg.Framework.Target},
				{"platform.components", fmt.Sprintf("%d components", len(cfg.Platform.Components))},
				{"platform.dirs", strings.Join(cfg.Platform.Dirs, ", ")},
				{"manifest.authors", cfg.Authors()},
				{"manifest.description", cfg.Manifest.Description},
				{"output.dir", cfg.Output.Dir},
				{"output.format", cfg.Output.Format.String()},
				{"packer.command", cfg.Packer.Command},
				{"packer.args", strings.Join(cfg.Packer.Args, " ")},
				{"ui.verbose", fmt.Sprint(cfg.UI.Verbose)},
			}
			for _, row := range rows {
				value := row[1]
				if value == "" {
					value = SubtitleStyle.Render("(unset)")
				}
				fmt.Fprintf(w, "  %-22s %s\n", SubtitleStyle.Render(row[0]+":"), value)
			}
			return nil
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var user bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write a default ` + CmdStyle.Render(config.ProjectFileName) + ` into dir (default: the current directory),
or the user configuration file with --user. An existing file is left alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case user:
				dir, err := config.ConfigDir()
				if err != nil {
					return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
				}
				path = filepath.Join(dir, config.ConfigFileName)
			case len(args) == 1:
				path = filepath.Join(args[0], config.ProjectFileName)
			default:
				path = config.ProjectFileName
			}

			written, err := config.WriteDefault(path)
			if err != nil {
				return app.fail(cmd, newServiceError(err, issue.WriteFailedId))
			}
			if !written {
				fmt.Fprintf(app.stdout, "%s %s already exists\n", warningIcon, path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s wrote %s\n", successIcon, CmdStyle.Render(path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "write the user configuration file instead")
	return cmd
}

func newConfigDumpCommand(app *App, root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [dir]",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			cfg, err := loadConfig(cmd, app, root, dir)
			if err != nil {
				return app.fail(cmd, newServiceError(err, issue.ConfigLoadFailedId))
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	}
}
