// SPDX-License-Identifier: MPL-2.0

package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/googol/nupackager/internal/catalog"
	"github.com/googol/nupackager/internal/nuspec"
	"github.com/googol/nupackager/internal/testutil"
	"github.com/googol/nupackager/pkg/modmeta"
	"github.com/googol/nupackager/pkg/packaging"
)

type (
	recordingPacker struct {
		manifests []string
		err       error
	}

	fixedDescriptions struct {
		text string
		err  error
	}
)

func (p *recordingPacker) Pack(_ context.Context, manifest string) error {
	p.manifests = append(p.manifests, manifest)
	return p.err
}

func (d fixedDescriptions) Description(context.Context, modmeta.Descriptor, *packaging.PackageMetadata) (string, error) {
	return d.text, d.err
}

// widgetsDir lays out a scan directory with a healthy family, one module with
// broken references and one binary without a descriptor.
func widgetsDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteModule(t, dir, "Widgets.v3.1.dll", "Widgets.v3.1", "3.1",
		testutil.Ref{Name: "Widgets.Core.v3.1", Version: "3.1"},
		testutil.Ref{Name: "PresentationCore", Version: "4.0.0.0"},
		testutil.Ref{Name: "System.Drawing", Version: "4.0.0.0"},
	)
	testutil.WriteModule(t, dir, "Widgets.Core.v3.1.dll", "Widgets.Core.v3.1", "3.1",
		testutil.Ref{Name: "PresentationCore", Version: "4.0.0.0"},
	)
	testutil.WriteModule(t, dir, "Widgets.Broken.v3.1.dll", "Widgets.Broken.v3.1", "3.1",
		testutil.Ref{Name: "Unrelated.v1.0", Version: "1.0"},
		testutil.Ref{Name: "PresentationCore"},
		testutil.Ref{Name: "Missing.Too"},
	)
	testutil.MustWriteFile(t, filepath.Join(dir, "Widgets.Orphan.dll"), []byte("MZ"))
	return dir
}

func newRunner(t *testing.T, dir string, opts Options) *Runner {
	t.Helper()

	policy, err := packaging.NewPolicy("Widgets", []string{"PresentationCore", "WindowsBase"})
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	loader := catalog.New(dir, catalog.WithPlatformComponents("PresentationCore", "System.Drawing"))

	if opts.Pattern == "" {
		opts.Pattern = "Widgets*.dll"
	}
	if opts.TargetFramework == "" {
		opts.TargetFramework = "net40"
	}
	opts.Template.Authors = "Widget Co"
	r, err := NewRunner(loader, policy, opts)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func resultByName(t *testing.T, s *Summary, name string) Result {
	t.Helper()
	for _, r := range s.Results {
		if r.Name() == name {
			return r
		}
	}
	t.Fatalf("no result named %q in %+v", name, s.Results)
	return Result{}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	var seen []string
	r := newRunner(t, dir, Options{DryRun: true, OnResult: func(res Result) { seen = append(seen, res.Name()) }})

	summary, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOrder := []string{"Widgets.Broken", "Widgets.Core", "Widgets.Orphan.dll", "Widgets"}
	if !slices.Equal(seen, wantOrder) {
		t.Errorf("OnResult order = %v, want %v", seen, wantOrder)
	}
	if len(summary.Succeeded()) != 2 || len(summary.Failed()) != 2 || !summary.HasFailures() {
		t.Errorf("succeeded = %d, failed = %d", len(summary.Succeeded()), len(summary.Failed()))
	}

	widgets := resultByName(t, summary, "Widgets")
	if widgets.State != packaging.StateReady || widgets.Output != "" {
		t.Errorf("Widgets state = %s, output = %q", widgets.State, widgets.Output)
	}
	md := widgets.Metadata
	if md.ID != "Widgets" || md.Version != "3.1" || md.Authors != "Widget Co" {
		t.Errorf("Widgets metadata = %+v", md)
	}
	if want := []packaging.Dependency{{ID: "Widgets.Core", Version: "3.1"}}; !slices.Equal(md.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", md.Dependencies, want)
	}
	if want := []string{"PresentationCore"}; !slices.Equal(md.FrameworkRequirements, want) {
		t.Errorf("FrameworkRequirements = %v, want %v", md.FrameworkRequirements, want)
	}

	core := resultByName(t, summary, "Widgets.Core")
	if !core.OK() || core.Metadata.Dependencies != nil {
		t.Errorf("Widgets.Core result = %+v", core)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if ext := filepath.Ext(e.Name()); ext == nuspec.ArchiveExt || ext == nuspec.ManifestExt {
			t.Errorf("dry run wrote %s", e.Name())
		}
	}
}

func TestRun_PlatformCopyNextToModulesStaysFrameworkRequirement(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteModule(t, dir, "Widgets.v3.1.dll", "Widgets.v3.1", "3.1",
		testutil.Ref{Name: "WindowsBase", Version: "4.0.0.0"},
	)
	testutil.WriteModule(t, dir, "WindowsBase.dll", "WindowsBase", "4.0.0.0")

	policy, err := packaging.NewPolicy("Widgets", []string{"WindowsBase"})
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	loader := catalog.New(dir, catalog.WithPlatformComponents("WindowsBase"))
	r, err := NewRunner(loader, policy, Options{Pattern: "Widgets*.dll", TargetFramework: "net40", DryRun: true})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	summary, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(summary.Results))
	}
	md := resultByName(t, summary, "Widgets").Metadata
	if want := []string{"WindowsBase"}; !slices.Equal(md.FrameworkRequirements, want) {
		t.Errorf("FrameworkRequirements = %v, want %v", md.FrameworkRequirements, want)
	}
	if md.Dependencies != nil {
		t.Errorf("Dependencies = %v, want none", md.Dependencies)
	}
}

func TestRun_BrokenReferencesListed(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	summary, err := newRunner(t, dir, Options{DryRun: true}).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	broken := resultByName(t, summary, "Widgets.Broken")
	if broken.State != packaging.StateAborted || broken.Metadata != nil {
		t.Fatalf("broken module state = %s, metadata = %+v", broken.State, broken.Metadata)
	}
	if want := []string{"Unrelated.v1.0", "Missing.Too"}; !slices.Equal(broken.BrokenReferences(), want) {
		t.Errorf("BrokenReferences() = %v, want %v", broken.BrokenReferences(), want)
	}
	if !errors.Is(broken.Err, packaging.ErrBrokenReference) || !errors.Is(broken.Err, catalog.ErrNotFound) {
		t.Errorf("broken module error = %v", broken.Err)
	}

	orphan := resultByName(t, summary, "Widgets.Orphan.dll")
	if orphan.PackageID != "" || !errors.Is(orphan.Err, modmeta.ErrLoad) {
		t.Errorf("orphan result = %+v", orphan)
	}
}

func TestRun_WritesArchives(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	out := t.TempDir()
	writer := nuspec.NewArchiveWriter(nuspec.Options{OutputDir: out, SourceDir: dir, TargetFramework: "net40"})

	summary, err := newRunner(t, dir, Options{Writer: writer}).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	widgets := resultByName(t, summary, "Widgets")
	if widgets.Output != filepath.Join(out, "Widgets.3.1.nupkg") {
		t.Errorf("Widgets output = %q", widgets.Output)
	}
	for _, name := range []string{"Widgets.3.1.nupkg", "Widgets.Core.3.1.nupkg"} {
		if _, statErr := os.Stat(filepath.Join(out, name)); statErr != nil {
			t.Errorf("expected %s: %v", name, statErr)
		}
	}
	if _, statErr := os.Stat(filepath.Join(out, "Widgets.Broken.3.1.nupkg")); !os.IsNotExist(statErr) {
		t.Error("aborted module must not produce a package")
	}
}

func TestRun_PackerAndDescriptions(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	out := t.TempDir()
	packer := &recordingPacker{}
	r := newRunner(t, dir, Options{
		Writer:       nuspec.NewNuspecWriter(nuspec.Options{OutputDir: out, SourceDir: dir, TargetFramework: "net40"}),
		Packer:       packer,
		Descriptions: fixedDescriptions{text: "Hand written."},
	})

	summary, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{filepath.Join(out, "Widgets.Core.3.1.nuspec"), filepath.Join(out, "Widgets.3.1.nuspec")}
	if !slices.Equal(packer.manifests, want) {
		t.Errorf("packer manifests = %v, want %v", packer.manifests, want)
	}
	for _, res := range summary.Succeeded() {
		if res.Metadata.Description != "Hand written." {
			t.Errorf("%s description = %q", res.Name(), res.Metadata.Description)
		}
	}
}

func TestProcess_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     func(out string) Options
		sentinel error
	}{
		{
			name: "packer failure",
			opts: func(out string) Options {
				return Options{
					Writer: nuspec.NewNuspecWriter(nuspec.Options{OutputDir: out}),
					Packer: &recordingPacker{err: errors.New("exit status 1")},
				}
			},
			sentinel: packaging.ErrWrite,
		},
		{
			name: "description failure",
			opts: func(string) Options {
				return Options{DryRun: true, Descriptions: fixedDescriptions{err: context.Canceled}}
			},
			sentinel: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := widgetsDir(t)
			r := newRunner(t, dir, tt.opts(t.TempDir()))
			res := r.Process(context.Background(), filepath.Join(dir, "Widgets.v3.1.dll"))
			if res.OK() || res.State != packaging.StateAborted {
				t.Fatalf("Process() = %+v, want aborted", res)
			}
			if !errors.Is(res.Err, tt.sentinel) {
				t.Errorf("Process() error = %v, want %v", res.Err, tt.sentinel)
			}
			if res.PackageID != "Widgets" {
				t.Errorf("PackageID = %q, want Widgets", res.PackageID)
			}
		})
	}
}

func TestProcess_EmptyPackageID(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	path := testutil.WriteModule(t, dir, "Widgets.Tagless.dll", ".v3.1", "3.1")

	res := newRunner(t, dir, Options{DryRun: true}).Process(context.Background(), path)
	if res.OK() || res.State != packaging.StateAborted {
		t.Fatalf("Process() = %+v, want aborted", res)
	}
	if !errors.Is(res.Err, packaging.ErrEmptyPackageID) {
		t.Errorf("Process() error = %v, want ErrEmptyPackageID", res.Err)
	}
	if res.Metadata != nil {
		t.Errorf("Metadata = %+v, want nil", res.Metadata)
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newRunner(t, dir, Options{DryRun: true}).Run(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if summary == nil || len(summary.Results) != 0 {
		t.Errorf("Run() summary = %+v, want empty", summary)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "absent")
	if _, err := newRunner(t, dir, Options{DryRun: true}).Run(context.Background(), dir); err == nil {
		t.Fatal("Run() expected error for missing directory")
	}
}

func TestNewRunner_RequiresWriter(t *testing.T) {
	t.Parallel()

	if _, err := NewRunner(catalog.New(t.TempDir()), packaging.DefaultPolicy(), Options{}); err == nil {
		t.Error("NewRunner() without Writer should fail")
	}
}

func TestSummary_WriteReport(t *testing.T) {
	t.Parallel()

	dir := widgetsDir(t)
	summary, err := newRunner(t, dir, Options{DryRun: true}).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := summary.WriteReportFile(path); err != nil {
		t.Fatalf("WriteReportFile() error = %v", err)
	}

	var got report
	if err := yaml.NewDecoder(bytes.NewReader(testutil.MustReadFile(t, path))).Decode(&got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if got.Succeeded != 2 || got.Failed != 2 || !got.DryRun || len(got.Modules) != 4 {
		t.Fatalf("report = %+v", got)
	}

	broken := got.Modules[0]
	if broken.ID != "Widgets.Broken" || broken.State != "aborted" || broken.Error == "" {
		t.Errorf("broken entry = %+v", broken)
	}
	if !slices.Equal(broken.BrokenReferences, []string{"Unrelated.v1.0", "Missing.Too"}) {
		t.Errorf("broken entry references = %v", broken.BrokenReferences)
	}

	widgets := got.Modules[3]
	if widgets.Package == nil || widgets.Package.ID != "Widgets" || len(widgets.Package.Dependencies) != 1 {
		t.Errorf("widgets entry = %+v", widgets)
	}
}
