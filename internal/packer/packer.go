// SPDX-License-Identifier: MPL-2.0

// Package packer runs an external packaging executable, such as
// "nuget pack", once for every manifest a run writes.
package packer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/googol/nupackager/internal/issue"
)

// DefaultArgs are used when no argument templates are configured.
var DefaultArgs = []string{"pack", "{{.Manifest}}"}

// ErrPackerFailed is returned when the packer exits unsuccessfully.
var ErrPackerFailed = errors.New("packer failed")

type (
	// Packer invokes one resolved executable with templated arguments.
	Packer struct {
		command string
		path    string
		args    []*template.Template
	}

	// Invocation is the data available to argument templates.
	Invocation struct {
		// Manifest is the absolute manifest path.
		Manifest string
		// OutputDir is the directory holding the manifest, also the working directory.
		OutputDir string
	}

	// RunError reports a failed packer invocation with its captured output.
	RunError struct {
		Command string
		Output  string
		Cause   error
	}
)

// New resolves command on PATH and parses the argument templates. It fails
// with an actionable error when the executable cannot be found.
func New(command string, args []string) (*Packer, error) {
	if len(args) == 0 {
		args = DefaultArgs
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("find packer executable").
			WithResource(command).
			WithSuggestions(
				"Install the packer or add it to PATH",
				"Set packer.command to the executable's full path",
				"Use --format nupkg to build packages without an external packer",
			).
			Wrap(err).
			BuildError()
	}

	p := &Packer{command: command, path: path}
	for i, a := range args {
		tmpl, parseErr := template.New(fmt.Sprintf("arg%d", i)).Option("missingkey=error").Parse(a)
		if parseErr != nil {
			return nil, issue.NewErrorContext().
				WithOperation("parse packer arguments").
				WithResource(a).
				WithSuggestion("Arguments may reference {{.Manifest}} and {{.OutputDir}}").
				Wrap(parseErr).
				BuildError()
		}
		p.args = append(p.args, tmpl)
	}
	return p, nil
}

// Path returns the resolved executable path.
func (p *Packer) Path() string { return p.path }

// Args renders the argument list for manifest.
func (p *Packer) Args(manifest string) ([]string, error) {
	abs := absPath(manifest)
	inv := Invocation{Manifest: abs, OutputDir: filepath.Dir(abs)}

	out := make([]string, 0, len(p.args))
	for _, tmpl := range p.args {
		var b strings.Builder
		if err := tmpl.Execute(&b, inv); err != nil {
			return nil, fmt.Errorf("render packer argument %s: %w", tmpl.Name(), err)
		}
		out = append(out, b.String())
	}
	return out, nil
}

// Pack runs the packer for manifest in the manifest's directory.
func (p *Packer) Pack(ctx context.Context, manifest string) error {
	args, err := p.Args(manifest)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Dir = filepath.Dir(absPath(manifest))
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	slog.Debug("running packer", "command", p.path, "args", args, "dir", cmd.Dir)
	if err := cmd.Run(); err != nil {
		return &RunError{Command: p.command, Output: strings.TrimSpace(output.String()), Cause: err}
	}
	return nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Cause)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Cause, e.Output)
}

// Unwrap exposes ErrPackerFailed and the process error.
func (e *RunError) Unwrap() []error { return []error{ErrPackerFailed, e.Cause} }
