// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/googol/nupackager/internal/batch"
	"github.com/googol/nupackager/internal/config"
	"github.com/googol/nupackager/internal/tui"
	"github.com/googol/nupackager/pkg/modmeta"
	"github.com/googol/nupackager/pkg/packaging"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// DescriptionPrompter builds the interactive description source used by
	// `pack --prompt-description`.
	DescriptionPrompter func(stderr io.Writer) batch.DescriptionSource

	// App wires CLI services and shared dependencies. Command handlers receive
	// an App and write only to its stdout and stderr.
	App struct {
		Config  ConfigProvider
		Prompt  DescriptionPrompter
		stdout  io.Writer
		stderr  io.Writer
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults.
	Dependencies struct {
		Config ConfigProvider
		Prompt DescriptionPrompter
		Stdout io.Writer
		Stderr io.Writer
	}

	promptDescriptions struct {
		cfg tui.Config
	}
)

// NewApp creates an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Prompt: deps.Prompt,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Prompt == nil {
		app.Prompt = newPromptDescriptions
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func newPromptDescriptions(stderr io.Writer) batch.DescriptionSource {
	cfg := tui.DefaultConfig()
	cfg.Output = stderr
	return promptDescriptions{cfg: cfg}
}

// Description asks for the description of one package. Leaving the prompt
// empty keeps the synthesized description.
func (p promptDescriptions) Description(ctx context.Context, _ modmeta.Descriptor, md *packaging.PackageMetadata) (string, error) {
	return tui.Input(ctx, tui.InputOptions{
		Title:       "Description for " + md.ID + " " + md.Version,
		Description: "Leave empty to keep the default.",
		Placeholder: md.Description,
		Config:      p.cfg,
	})
}
