// SPDX-License-Identifier: MPL-2.0

package packer

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/googol/nupackager/internal/issue"
	"github.com/googol/nupackager/internal/testutil"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based packer tests need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNew_MissingExecutable(t *testing.T) {
	t.Parallel()

	_, err := New("nupackager-no-such-packer", nil)
	if err == nil {
		t.Fatal("New() expected error for missing executable")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || len(ae.Suggestions) == 0 {
		t.Errorf("New() error = %T %v, want actionable error with suggestions", err, err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("New() error should wrap exec.ErrNotFound, got %v", err)
	}
}

func TestNew_BadTemplate(t *testing.T) {
	t.Parallel()
	requireShell(t)

	if _, err := New("sh", []string{"{{.Manifest"}); err == nil {
		t.Fatal("New() expected template parse error")
	}
}

func TestPacker_Args(t *testing.T) {
	t.Parallel()
	requireShell(t)

	p, err := New("sh", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	manifest := filepath.Join(t.TempDir(), "Widgets.3.1.nuspec")
	got, err := p.Args(manifest)
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	if want := []string{"pack", manifest}; !slices.Equal(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}

	p, err = New("sh", []string{"-o", "{{.OutputDir}}", "{{.Nope}}"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := p.Args(manifest); err == nil {
		t.Error("Args() expected error for unknown template field")
	}
}

func TestPacker_Pack(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	manifest := filepath.Join(dir, "Widgets.3.1.nuspec")
	testutil.MustWriteFile(t, manifest, []byte("<package/>"))

	p, err := New("sh", []string{"-c", `cp "$1" packed.out`, "sh", "{{.Manifest}}"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Pack(context.Background(), manifest); err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if got := string(testutil.MustReadFile(t, filepath.Join(dir, "packed.out"))); got != "<package/>" {
		t.Errorf("packer did not run in the manifest directory, got %q", got)
	}
}

func TestPacker_PackFailure(t *testing.T) {
	t.Parallel()
	requireShell(t)

	manifest := filepath.Join(t.TempDir(), "Widgets.3.1.nuspec")
	p, err := New("sh", []string{"-c", "echo bad manifest >&2; exit 3"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = p.Pack(context.Background(), manifest)
	if !errors.Is(err, ErrPackerFailed) {
		t.Fatalf("Pack() error = %v, want ErrPackerFailed", err)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("Pack() error should carry exit code 3, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad manifest") {
		t.Errorf("Pack() error should include packer output, got %q", err.Error())
	}
}
