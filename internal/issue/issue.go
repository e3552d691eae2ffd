// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of a catalog entry.
	MarkdownMsg string

	// HttpLink is an external reference link.
	HttpLink string

	// Issue is a help page shown when a run fails for a known reason.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

const (
	ScanDirNotFoundId Id = iota + 1
	NoModulesFoundId
	BrokenReferenceId
	DescriptorNotFoundId
	PackerNotFoundId
	PackerFailedId
	WriteFailedId
	ConfigLoadFailedId
)

var (
	render = glamour.Render

	scanDirNotFoundIssue = &Issue{
		id: ScanDirNotFoundId,
		mdMsg: `
# Scan directory not found

The directory passed to ` + "`nupackager pack`" + ` does not exist or is not readable.

## Things you can try:
- Pass the directory holding the built binaries:
~~~
$ nupackager pack ./bin/Release
~~~
- Run from that directory and omit the argument.`,
	}

	noModulesFoundIssue = &Issue{
		id: NoModulesFoundId,
		mdMsg: `
# No modules matched

No file in the scan directory matched the family pattern.

## Things you can try:
- Check the pattern, matching ignores case:
~~~
$ nupackager pack --pattern 'Infragistics*.dll'
~~~
- Set ` + "`family.pattern`" + ` in ` + "`nupackager.cue`" + `.`,
		extLinks: []HttpLink{
			"https://github.com/bmatcuk/doublestar#patterns",
		},
	}

	brokenReferenceIssue = &Issue{
		id: BrokenReferenceId,
		mdMsg: `
# A module references something that cannot be loaded

Every reference of a module must resolve to a descriptor next to the module,
in a platform directory, or to a listed platform component. Modules with a
broken reference are not packaged.

## Things you can try:
- Copy the missing binary and its ` + "`.module.cue`" + ` descriptor into the scan directory.
- List the assembly under ` + "`platform.components`" + ` when it ships with the runtime.
- Add the directory holding it to ` + "`platform.dirs`" + `.`,
		extLinks: []HttpLink{
			"https://learn.microsoft.com/en-us/nuget/reference/target-frameworks",
		},
	}

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# Module descriptor missing

Each binary needs a ` + "`<binary>.module.cue`" + ` descriptor beside it:

~~~cue
name:    "Infragistics.Widgets.v11.2"
version: "11.2.20112.1"
references: [
	{name: "Infragistics.Shared.v11.2", version: "11.2.20112.1"},
	{name: "System.Xaml", version: "4.0.0.0"},
]
~~~`,
		extLinks: []HttpLink{
			"https://cuelang.org/docs/",
		},
	}

	packerNotFoundIssue = &Issue{
		id: PackerNotFoundId,
		mdMsg: `
# Packer not found

With ` + "`--format nuspec`" + ` each manifest is handed to an external packer,
which must be on your PATH.

## Things you can try:
- Install the NuGet command line and retry.
- Point ` + "`packer.command`" + ` at the executable.
- Use ` + "`--format nupkg`" + ` to build the archives directly.`,
		extLinks: []HttpLink{
			"https://learn.microsoft.com/en-us/nuget/install-nuget-client-tools",
		},
	}

	packerFailedIssue = &Issue{
		id: PackerFailedId,
		mdMsg: `
# Packer failed

The external packer exited with an error for at least one manifest. The
manifests were kept in the output directory so you can rerun it by hand.`,
		extLinks: []HttpLink{
			"https://learn.microsoft.com/en-us/nuget/reference/cli-reference/cli-ref-pack",
			"https://learn.microsoft.com/en-us/nuget/reference/nuspec",
		},
	}

	writeFailedIssue = &Issue{
		id: WriteFailedId,
		mdMsg: `
# Package could not be written

## Things you can try:
- Check that the output directory exists and is writable.
- Check for free disk space.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

## Things you can try:
- Print the effective configuration:
~~~
$ nupackager config show
~~~
- Regenerate a default file:
~~~
$ nupackager config init
~~~`,
		extLinks: []HttpLink{
			"https://cuelang.org/docs/",
		},
	}

	issues = map[Id]*Issue{
		scanDirNotFoundIssue.Id():    scanDirNotFoundIssue,
		noModulesFoundIssue.Id():     noModulesFoundIssue,
		brokenReferenceIssue.Id():    brokenReferenceIssue,
		descriptorNotFoundIssue.Id(): descriptorNotFoundIssue,
		packerNotFoundIssue.Id():     packerNotFoundIssue,
		packerFailedIssue.Id():       packerFailedIssue,
		writeFailedIssue.Id():        writeFailedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
	}
)

// Id returns the catalog ID.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the unrendered Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Title returns the first Markdown heading of the entry.
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return ""
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the entry with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns every catalog entry ordered by ID.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
