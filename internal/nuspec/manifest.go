// SPDX-License-Identifier: MPL-2.0

package nuspec

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/googol/nupackager/pkg/packaging"
)

// NuspecWriter writes "<id>.<version>.nuspec" manifests. File sources are
// written relative to the output directory so an external packer run there
// finds them.
type NuspecWriter struct {
	opts Options
}

// NewNuspecWriter creates a manifest writer.
func NewNuspecWriter(opts Options) *NuspecWriter {
	return &NuspecWriter{opts: opts}
}

// Write implements Writer.
func (w *NuspecWriter) Write(ctx context.Context, md *packaging.PackageMetadata, files []packaging.FilePlacement) (string, error) {
	path, err := w.opts.prepare(ctx, md, ManifestExt)
	if err != nil {
		return "", packaging.NewWriteError(md.ID, path, err)
	}

	rel := make([]packaging.FilePlacement, 0, len(files))
	for _, f := range files {
		rel = append(rel, packaging.FilePlacement{Source: w.relativeSource(f.Source), Target: f.Target})
	}

	doc := NewDocument(md, rel, w.opts.TargetFramework)
	if err := createFile(path, func(f *os.File) error { return doc.Encode(f) }); err != nil {
		return "", packaging.NewWriteError(md.ID, path, err)
	}

	slog.Debug("wrote manifest", "package", md.ID, "path", path)
	return path, nil
}

func (w *NuspecWriter) relativeSource(src string) string {
	abs, err := filepath.Abs(w.opts.source(src))
	if err != nil {
		return filepath.ToSlash(src)
	}
	outAbs, err := filepath.Abs(w.opts.outputDir())
	if err != nil {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(outAbs, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
