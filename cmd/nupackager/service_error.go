// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/googol/nupackager/internal/issue"
)

// issueStyle lets glamour pick dark, light or notty for the terminal.
const issueStyle = "auto"

// ServiceError is a fatal error that carries an optional issue catalog ID
// for rendering help text.
// Always create via newServiceError.
type ServiceError struct {
	Err     error
	IssueID issue.Id
}

func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderIssue prints the catalog entry for id, if any.
func renderIssue(w io.Writer, id issue.Id) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(issueStyle)
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// fail prints a fatal error with its help page and returns the ExitError
// that ends the command. cobra's own error printing is silenced.
func (a *App) fail(cmd *cobra.Command, svcErr *ServiceError) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fmt.Fprintf(a.stderr, "%s %s\n", errorIcon, formatErrorForDisplay(svcErr.Err, a.verbose))
	renderIssue(a.stderr, svcErr.IssueID)
	return &ExitError{Code: ExitFatal, Err: svcErr}
}
