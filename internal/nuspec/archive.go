// SPDX-License-Identifier: MPL-2.0

package nuspec

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/googol/nupackager/pkg/packaging"
)

const (
	contentTypesEntry = "[Content_Types].xml"
	relsEntry         = "_rels/.rels"

	contentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"
	relsNamespace         = "http://schemas.openxmlformats.org/package/2006/relationships"
	manifestRelType       = "http://schemas.microsoft.com/packaging/2010/07/manifest"
	relsContentType       = "application/vnd.openxmlformats-package.relationships+xml"
	octetContentType      = "application/octet"
)

type (
	// ArchiveWriter writes "<id>.<version>.nupkg" archives holding the
	// manifest, the placed files and the packaging parts NuGet expects.
	ArchiveWriter struct {
		opts Options
	}

	contentTypes struct {
		XMLName  xml.Name             `xml:"Types"`
		Xmlns    string               `xml:"xmlns,attr"`
		Defaults []contentTypeDefault `xml:"Default"`
	}

	contentTypeDefault struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	}

	relationships struct {
		XMLName xml.Name       `xml:"Relationships"`
		Xmlns   string         `xml:"xmlns,attr"`
		Rels    []relationship `xml:"Relationship"`
	}

	relationship struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
		ID     string `xml:"Id,attr"`
	}
)

// NewArchiveWriter creates a package archive writer.
func NewArchiveWriter(opts Options) *ArchiveWriter {
	return &ArchiveWriter{opts: opts}
}

// Write implements Writer. A partially written archive is removed.
func (w *ArchiveWriter) Write(ctx context.Context, md *packaging.PackageMetadata, files []packaging.FilePlacement) (string, error) {
	archivePath, err := w.opts.prepare(ctx, md, ArchiveExt)
	if err != nil {
		return "", packaging.NewWriteError(md.ID, archivePath, err)
	}

	err = createFile(archivePath, func(f *os.File) error {
		return w.fill(f, md, files)
	})
	if err != nil {
		return "", packaging.NewWriteError(md.ID, archivePath, err)
	}

	slog.Debug("wrote package", "package", md.ID, "path", archivePath)
	return archivePath, nil
}

func (w *ArchiveWriter) fill(out io.Writer, md *packaging.PackageMetadata, files []packaging.FilePlacement) (err error) {
	zw := zip.NewWriter(out)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	manifestName := md.ID + ManifestExt
	var manifest bytes.Buffer
	if err := NewDocument(md, nil, w.opts.TargetFramework).Encode(&manifest); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(zw, manifestName, manifest.Bytes()); err != nil {
		return err
	}

	exts := []string{"rels", strings.TrimPrefix(ManifestExt, ".")}
	for _, f := range files {
		name := path.Join(f.Target, filepath.Base(f.Source))
		if err := w.copyFile(zw, name, w.opts.source(f.Source)); err != nil {
			return err
		}
		if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" && !slices.Contains(exts, ext) {
			exts = append(exts, ext)
		}
	}

	rels := relationships{
		Xmlns: relsNamespace,
		Rels:  []relationship{{Type: manifestRelType, Target: "/" + manifestName, ID: "R0"}},
	}
	if err := writeXMLEntry(zw, relsEntry, rels); err != nil {
		return err
	}

	types := contentTypes{Xmlns: contentTypesNamespace}
	for _, ext := range exts {
		ct := octetContentType
		if ext == "rels" {
			ct = relsContentType
		}
		types.Defaults = append(types.Defaults, contentTypeDefault{Extension: ext, ContentType: ct})
	}
	return writeXMLEntry(zw, contentTypesEntry, types)
}

func (w *ArchiveWriter) copyFile(zw *zip.Writer, name, src string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("create header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := io.Copy(dst, in); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	dst, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func writeXMLEntry(zw *zip.Writer, name string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeEntry(zw, name, buf.Bytes())
}
