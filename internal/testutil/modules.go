// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// Ref is a reference written into a descriptor sidecar. Version may be empty.
type Ref struct {
	Name    string
	Version string
}

// WriteModule creates <dir>/<file> with placeholder bytes and its
// <file>.module.cue sidecar declaring name, version and refs.
// It returns the binary path.
func WriteModule(t testing.TB, dir, file, name, version string, refs ...Ref) string {
	t.Helper()

	binary := filepath.Join(dir, file)
	MustWriteFile(t, binary, []byte("MZ fake module "+name))
	MustWriteFile(t, binary+".module.cue", []byte(Sidecar(name, version, refs...)))
	return binary
}

// Sidecar renders a descriptor sidecar document.
func Sidecar(name, version string, refs ...Ref) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name:    %q\nversion: %q\n", name, version)
	if len(refs) > 0 {
		sb.WriteString("references: [\n")
		for _, r := range refs {
			if r.Version == "" {
				fmt.Fprintf(&sb, "\t{name: %q},\n", r.Name)
			} else {
				fmt.Fprintf(&sb, "\t{name: %q, version: %q},\n", r.Name, r.Version)
			}
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}
