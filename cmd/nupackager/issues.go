// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/googol/nupackager/internal/issue"
)

func newIssuesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "issues [id]",
		Short: "List the help pages shown for known failures",
		Long: `List the help pages nupackager shows when a run fails for a known reason,
or print one of them in full.`,
		Example: `  nupackager issues
  nupackager issues 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				app.listIssues()
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil || issue.Get(issue.Id(n)) == nil {
				return fmt.Errorf("unknown issue %q, run 'nupackager issues' to list them", args[0])
			}
			renderIssue(app.stdout, issue.Id(n))
			return nil
		},
	}
}

func (a *App) listIssues() {
	fmt.Fprintln(a.stdout, TitleStyle.Render("Known issues"))
	for _, entry := range issue.Values() {
		fmt.Fprintf(a.stdout, "  %s %s\n", CmdStyle.Render(fmt.Sprintf("%2d", entry.Id())), entry.Title())
		for _, link := range entry.ExtLinks() {
			fmt.Fprintf(a.stdout, "     %s\n", SubtitleStyle.Render(string(link)))
		}
	}
}
