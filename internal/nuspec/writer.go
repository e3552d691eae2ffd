// SPDX-License-Identifier: MPL-2.0

package nuspec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/googol/nupackager/pkg/packaging"
)

const (
	// FormatNupkg writes complete package archives.
	FormatNupkg Format = "nupkg"
	// FormatNuspec writes manifest documents only.
	FormatNuspec Format = "nuspec"

	// ManifestExt is the manifest document extension.
	ManifestExt = ".nuspec"
	// ArchiveExt is the package archive extension.
	ArchiveExt = ".nupkg"
)

// ErrInvalidFormat is returned for an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

type (
	// Format selects what a Writer produces.
	Format string

	// Options configure a Writer.
	Options struct {
		// OutputDir receives the written files. It is created when missing.
		OutputDir string
		// SourceDir resolves relative placement sources.
		SourceDir string
		// TargetFramework is stamped on dependency groups and framework assemblies.
		TargetFramework string
	}

	// Writer persists one package's metadata and file placements and returns
	// the path it wrote. Failures are *packaging.WriteError.
	Writer interface {
		Write(ctx context.Context, md *packaging.PackageMetadata, files []packaging.FilePlacement) (string, error)
	}
)

// IsValid returns whether the Format is a known output format.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatNupkg, FormatNuspec:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidFormat, string(f), FormatNupkg, FormatNuspec)}
	}
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// New returns the Writer for format.
func New(format Format, opts Options) (Writer, error) {
	if ok, errs := format.IsValid(); !ok {
		return nil, errs[0]
	}
	if format == FormatNuspec {
		return NewNuspecWriter(opts), nil
	}
	return NewArchiveWriter(opts), nil
}

func (o Options) source(p string) string {
	if filepath.IsAbs(p) || o.SourceDir == "" {
		return p
	}
	return filepath.Join(o.SourceDir, p)
}

func (o Options) prepare(ctx context.Context, md *packaging.PackageMetadata, ext string) (string, error) {
	target := filepath.Join(o.OutputDir, md.FileName(ext))
	if err := ctx.Err(); err != nil {
		return target, err
	}
	if err := os.MkdirAll(o.outputDir(), 0o755); err != nil {
		return target, err
	}
	return target, nil
}

func (o Options) outputDir() string {
	if o.OutputDir == "" {
		return "."
	}
	return o.OutputDir
}

// createFile creates path and runs fill on it. The file is removed when fill
// or closing fails.
func createFile(path string, fill func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return fill(f)
}
