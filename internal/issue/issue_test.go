// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(ConfigLoadFailedId) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), ConfigLoadFailedId)
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
		if strings.TrimSpace(string(v.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", v.Id())
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	out, err := Get(BrokenReferenceId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "cannot be loaded") {
		t.Errorf("Render() output missing heading:\n%s", out)
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	entry := Get(PackerFailedId)
	links := entry.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ExtLinks() is empty")
	}
	want := links[0]
	links[0] = "changed"
	if entry.ExtLinks()[0] != want {
		t.Error("ExtLinks() must return a copy")
	}
}

func TestIssue_RenderListsLinks(t *testing.T) {
	t.Parallel()

	out, err := Get(PackerNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "install-nuget-client-tools") {
		t.Errorf("Render() output missing links:\n%s", out)
	}
}

func TestIssue_Title(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   Id
		want string
	}{
		{ScanDirNotFoundId, "Scan directory not found"},
		{DescriptorNotFoundId, "Module descriptor missing"},
		{ConfigLoadFailedId, "Configuration could not be loaded"},
	}
	for _, tt := range tests {
		if got := Get(tt.id).Title(); got != tt.want {
			t.Errorf("Get(%d).Title() = %q, want %q", tt.id, got, tt.want)
		}
	}
	if got := (&Issue{mdMsg: "no heading"}).Title(); got != "" {
		t.Errorf("Title() without heading = %q, want empty", got)
	}
}
