// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// InputOptions configures Input.
type InputOptions struct {
	Title       string
	Description string
	Placeholder string
	// Value is the initial value.
	Value     string
	CharLimit int
	Config    Config
}

// Input asks for one line of text and returns it trimmed.
func Input(ctx context.Context, opts InputOptions) (string, error) {
	result := opts.Value

	field := huh.NewInput().
		Title(opts.Title).
		Description(opts.Description).
		Placeholder(opts.Placeholder).
		Value(&result)
	if opts.CharLimit > 0 {
		field = field.CharLimit(opts.CharLimit)
	}

	if err := opts.Config.form(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(result), nil
}
