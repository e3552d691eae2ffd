// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"
)

const (
	// OutputFormatNupkg writes package archives.
	OutputFormatNupkg OutputFormat = "nupkg"
	// OutputFormatNuspec writes manifest documents for an external packer.
	OutputFormatNuspec OutputFormat = "nuspec"
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidFamilyConfig is the sentinel error wrapped by InvalidFamilyConfigError.
	ErrInvalidFamilyConfig = errors.New("invalid family config")
	// ErrInvalidManifestConfig is the sentinel error wrapped by InvalidManifestConfigError.
	ErrInvalidManifestConfig = errors.New("invalid manifest config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects what a run writes.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// FamilyConfig identifies the packaged family.
	FamilyConfig struct {
		// Name is used for authors and descriptions.
		Name string `yaml:"name" mapstructure:"name"`
		// Prefix selects which local references become package dependencies.
		Prefix string `yaml:"prefix" mapstructure:"prefix"`
		// Pattern selects the binaries to package in the scan directory.
		Pattern string `yaml:"pattern" mapstructure:"pattern"`
	}

	// InvalidFamilyConfigError collects FamilyConfig field errors.
	InvalidFamilyConfigError struct {
		FieldErrors []error
	}

	// FrameworkConfig controls platform-provided references.
	FrameworkConfig struct {
		// Allow lists the platform components that become framework requirements.
		Allow []string `yaml:"allow" mapstructure:"allow"`
		// Target is the target framework moniker, e.g. net40.
		Target string `yaml:"target" mapstructure:"target"`
	}

	// PlatformConfig describes what the target runtime provides.
	PlatformConfig struct {
		// Components are names resolvable without a descriptor.
		Components []string `yaml:"components" mapstructure:"components"`
		// Dirs hold descriptors of platform-provided modules.
		Dirs []string `yaml:"dirs,omitempty" mapstructure:"dirs"`
	}

	// ManifestConfig holds the fixed manifest values.
	ManifestConfig struct {
		// Authors defaults to the family name when empty.
		Authors string `yaml:"authors,omitempty" mapstructure:"authors"`
		// Description is a text/template over DescriptionData.
		Description string `yaml:"description" mapstructure:"description"`
	}

	// InvalidManifestConfigError collects ManifestConfig field errors.
	InvalidManifestConfigError struct {
		FieldErrors []error
	}

	// DescriptionData is the data available to the description template.
	DescriptionData struct {
		Family  string
		Name    string
		ID      string
		Version string
	}

	// OutputConfig controls where and what is written.
	OutputConfig struct {
		// Dir defaults to the scan directory when empty.
		Dir    string       `yaml:"dir,omitempty" mapstructure:"dir"`
		Format OutputFormat `yaml:"format" mapstructure:"format"`
	}

	// PackerConfig configures the external packer used with the nuspec format.
	PackerConfig struct {
		// Command is disabled when empty.
		Command string   `yaml:"command,omitempty" mapstructure:"command"`
		Args    []string `yaml:"args" mapstructure:"args"`
	}

	// UIConfig configures output.
	UIConfig struct {
		Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	}

	// Config is the complete nupackager configuration.
	Config struct {
		Family    FamilyConfig    `yaml:"family" mapstructure:"family"`
		Framework FrameworkConfig `yaml:"framework" mapstructure:"framework"`
		Platform  PlatformConfig  `yaml:"platform" mapstructure:"platform"`
		Manifest  ManifestConfig  `yaml:"manifest" mapstructure:"manifest"`
		Output    OutputConfig    `yaml:"output" mapstructure:"output"`
		Packer    PackerConfig    `yaml:"packer" mapstructure:"packer"`
		UI        UIConfig        `yaml:"ui" mapstructure:"ui"`
	}

	// InvalidConfigError collects every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultFrameworkComponents are the .NET Framework 4 assemblies resolvable
// from the platform without a descriptor.
var DefaultFrameworkComponents = []string{
	"Accessibility",
	"Microsoft.CSharp",
	"mscorlib",
	"PresentationCore",
	"PresentationFramework",
	"ReachFramework",
	"System",
	"System.ComponentModel.DataAnnotations",
	"System.Configuration",
	"System.Core",
	"System.Data",
	"System.Design",
	"System.Drawing",
	"System.Printing",
	"System.Runtime.Serialization",
	"System.ServiceModel",
	"System.Web",
	"System.Windows.Forms",
	"System.Xaml",
	"System.Xml",
	"System.Xml.Linq",
	"UIAutomationProvider",
	"UIAutomationTypes",
	"WindowsBase",
	"WindowsFormsIntegration",
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Family: FamilyConfig{
			Name:    "Infragistics",
			Prefix:  "Infragistics",
			Pattern: "Infragistics*.dll",
		},
		Framework: FrameworkConfig{
			Allow:  []string{"PresentationCore", "PresentationFramework", "System.Xaml", "WindowsBase"},
			Target: "net40",
		},
		Platform: PlatformConfig{
			Components: slices.Clone(DefaultFrameworkComponents),
		},
		Manifest: ManifestConfig{
			Description: "This package contains the {{.Family}} assembly {{.Name}}.",
		},
		Output: OutputConfig{
			Format: OutputFormatNupkg,
		},
		Packer: PackerConfig{
			Args: []string{"pack", "{{.Manifest}}"},
		},
	}
}

// IsValid returns whether the OutputFormat is a recognized value.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputFormatNupkg, OutputFormatNuspec:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// String returns the format name.
func (f OutputFormat) String() string { return string(f) }

// Error implements the error interface.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: %s, %s)", e.Value, OutputFormatNupkg, OutputFormatNuspec)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// IsValid returns whether every family field is set.
func (c FamilyConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("family.name must be non-empty"))
	}
	if strings.TrimSpace(c.Prefix) == "" {
		errs = append(errs, errors.New("family.prefix must be non-empty"))
	}
	if strings.TrimSpace(c.Pattern) == "" {
		errs = append(errs, errors.New("family.pattern must be non-empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidFamilyConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidFamilyConfigError) Error() string {
	return fmt.Sprintf("invalid family config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidFamilyConfig for errors.Is() compatibility.
func (e *InvalidFamilyConfigError) Unwrap() error { return ErrInvalidFamilyConfig }

// IsValid returns whether the description template parses.
func (c ManifestConfig) IsValid() (bool, []error) {
	if _, err := c.DescriptionTemplate(); err != nil {
		return false, []error{&InvalidManifestConfigError{FieldErrors: []error{err}}}
	}
	return true, nil
}

// DescriptionTemplate parses the description template.
func (c ManifestConfig) DescriptionTemplate() (*template.Template, error) {
	tmpl, err := template.New("description").Option("missingkey=error").Parse(c.Description)
	if err != nil {
		return nil, fmt.Errorf("manifest.description: %w", err)
	}
	return tmpl, nil
}

// Error implements the error interface.
func (e *InvalidManifestConfigError) Error() string {
	return fmt.Sprintf("invalid manifest config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidManifestConfig for errors.Is() compatibility.
func (e *InvalidManifestConfigError) Unwrap() error { return ErrInvalidManifestConfig }

// Authors returns the configured authors, falling back to the family name.
func (c Config) Authors() string {
	if c.Manifest.Authors != "" {
		return c.Manifest.Authors
	}
	return c.Family.Name
}

// IsValid returns whether the Config has valid values.
// It delegates to FamilyConfig.IsValid, ManifestConfig.IsValid and
// OutputFormat.IsValid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Family.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Manifest.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Output.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(c.Framework.Target) == "" {
		errs = append(errs, errors.New("framework.target must be non-empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
