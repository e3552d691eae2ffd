// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/googol/nupackager/internal/issue"
	"github.com/googol/nupackager/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "nupackager"
	// ConfigFileName is the user config file name.
	ConfigFileName = "config.cue"
	// ProjectFileName is the per-directory config file name.
	ProjectFileName = "nupackager.cue"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the nupackager user configuration directory
// (os.UserConfigDir()/nupackager).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// LoadWithSources loads the configuration and returns the files that were
// merged, in merge order.
func LoadWithSources(ctx context.Context, opts LoadOptions) (*Config, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	var sources []string
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'nupackager config init' to create one").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := mergeFile(v, opts.ConfigFilePath); err != nil {
			return nil, nil, err
		}
		sources = append(sources, opts.ConfigFilePath)
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, nil, err
		}

		candidates := []string{filepath.Join(cfgDir, ConfigFileName)}
		if opts.ProjectDir != "" {
			candidates = append(candidates, filepath.Join(opts.ProjectDir, ProjectFileName))
		}
		for _, path := range candidates {
			if !fileExists(path) {
				continue
			}
			if err := mergeFile(v, path); err != nil {
				return nil, nil, err
			}
			sources = append(sources, path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(strings.Join(sources, ", ")).
			WithSuggestion("Run 'nupackager config show' to inspect the effective values").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, sources, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("family.name", d.Family.Name)
	v.SetDefault("family.prefix", d.Family.Prefix)
	v.SetDefault("family.pattern", d.Family.Pattern)
	v.SetDefault("framework.allow", d.Framework.Allow)
	v.SetDefault("framework.target", d.Framework.Target)
	v.SetDefault("platform.components", d.Platform.Components)
	v.SetDefault("platform.dirs", d.Platform.Dirs)
	v.SetDefault("manifest.authors", d.Manifest.Authors)
	v.SetDefault("manifest.description", d.Manifest.Description)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.format", string(d.Output.Format))
	v.SetDefault("packer.command", d.Packer.Command)
	v.SetDefault("packer.args", d.Packer.Args)
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

func mergeFile(v *viper.Viper, path string) error {
	if err := loadCUEIntoViper(v, path); err != nil {
		return issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the values match the schema printed by 'nupackager config init'").
			Wrap(err).
			BuildError()
	}
	return nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Fields are optional, so the unified value is not required to be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path unless a file
// already exists there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE renders cfg as a CUE document accepted by #Config.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// nupackager configuration\n\n")

	sb.WriteString("family: {\n")
	fmt.Fprintf(&sb, "\tname:    %q\n", cfg.Family.Name)
	fmt.Fprintf(&sb, "\tprefix:  %q\n", cfg.Family.Prefix)
	fmt.Fprintf(&sb, "\tpattern: %q\n", cfg.Family.Pattern)
	sb.WriteString("}\n")

	sb.WriteString("\nframework: {\n")
	writeList(&sb, "allow", cfg.Framework.Allow)
	fmt.Fprintf(&sb, "\ttarget: %q\n", cfg.Framework.Target)
	sb.WriteString("}\n")

	sb.WriteString("\nplatform: {\n")
	writeList(&sb, "components", cfg.Platform.Components)
	if len(cfg.Platform.Dirs) > 0 {
		writeList(&sb, "dirs", cfg.Platform.Dirs)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nmanifest: {\n")
	if cfg.Manifest.Authors != "" {
		fmt.Fprintf(&sb, "\tauthors: %q\n", cfg.Manifest.Authors)
	}
	fmt.Fprintf(&sb, "\tdescription: %q\n", cfg.Manifest.Description)
	sb.WriteString("}\n")

	sb.WriteString("\noutput: {\n")
	if cfg.Output.Dir != "" {
		fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Output.Dir)
	}
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Output.Format)
	sb.WriteString("}\n")

	sb.WriteString("\npacker: {\n")
	if cfg.Packer.Command != "" {
		fmt.Fprintf(&sb, "\tcommand: %q\n", cfg.Packer.Command)
	}
	writeList(&sb, "args", cfg.Packer.Args)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(sb, "\t%s: []\n", key)
		return
	}
	fmt.Fprintf(sb, "\t%s: [\n", key)
	for _, v := range values {
		fmt.Fprintf(sb, "\t\t%q,\n", v)
	}
	sb.WriteString("\t]\n")
}
