// SPDX-License-Identifier: MPL-2.0

package nuspec

import (
	"encoding/xml"
	"io"

	"github.com/googol/nupackager/pkg/packaging"
)

// Namespace is the nuspec schema namespace written on the root element.
const Namespace = "http://schemas.microsoft.com/packaging/2010/07/nuspec.xsd"

type (
	// Document is the XML shape of a .nuspec manifest.
	Document struct {
		XMLName  xml.Name `xml:"package"`
		Xmlns    string   `xml:"xmlns,attr"`
		Metadata Metadata `xml:"metadata"`
		Files    *Files   `xml:"files,omitempty"`
	}

	// Metadata is the <metadata> element.
	Metadata struct {
		ID                  string               `xml:"id"`
		Version             string               `xml:"version"`
		Authors             string               `xml:"authors"`
		Description         string               `xml:"description"`
		Dependencies        *Dependencies        `xml:"dependencies,omitempty"`
		FrameworkAssemblies *FrameworkAssemblies `xml:"frameworkAssemblies,omitempty"`
	}

	// Dependencies is the <dependencies> element.
	Dependencies struct {
		Groups []DependencyGroup `xml:"group"`
	}

	// DependencyGroup lists the dependencies for one target framework.
	DependencyGroup struct {
		TargetFramework string       `xml:"targetFramework,attr,omitempty"`
		Dependencies    []Dependency `xml:"dependency"`
	}

	// Dependency is a <dependency id version/> entry.
	Dependency struct {
		ID      string `xml:"id,attr"`
		Version string `xml:"version,attr"`
	}

	// FrameworkAssemblies is the <frameworkAssemblies> element.
	FrameworkAssemblies struct {
		Assemblies []FrameworkAssembly `xml:"frameworkAssembly"`
	}

	// FrameworkAssembly is a platform component the consumer must provide.
	FrameworkAssembly struct {
		AssemblyName    string `xml:"assemblyName,attr"`
		TargetFramework string `xml:"targetFramework,attr,omitempty"`
	}

	// Files is the <files> element.
	Files struct {
		Files []File `xml:"file"`
	}

	// File places one source file under a target directory of the package.
	File struct {
		Src    string `xml:"src,attr"`
		Target string `xml:"target,attr"`
	}
)

// NewDocument builds the manifest for md. Empty dependency and framework
// lists produce no element at all, and files is omitted when empty.
func NewDocument(md *packaging.PackageMetadata, files []packaging.FilePlacement, targetFramework string) *Document {
	doc := &Document{
		Xmlns: Namespace,
		Metadata: Metadata{
			ID:          md.ID,
			Version:     md.Version,
			Authors:     md.Authors,
			Description: md.Description,
		},
	}

	if len(md.Dependencies) > 0 {
		group := DependencyGroup{TargetFramework: targetFramework}
		for _, d := range md.Dependencies {
			group.Dependencies = append(group.Dependencies, Dependency{ID: d.ID, Version: d.Version})
		}
		doc.Metadata.Dependencies = &Dependencies{Groups: []DependencyGroup{group}}
	}

	if len(md.FrameworkRequirements) > 0 {
		fa := &FrameworkAssemblies{}
		for _, name := range md.FrameworkRequirements {
			fa.Assemblies = append(fa.Assemblies, FrameworkAssembly{AssemblyName: name, TargetFramework: targetFramework})
		}
		doc.Metadata.FrameworkAssemblies = fa
	}

	if len(files) > 0 {
		doc.Files = &Files{}
		for _, f := range files {
			doc.Files.Files = append(doc.Files.Files, File{Src: f.Source, Target: f.Target})
		}
	}

	return doc
}

// Encode writes the document with an XML declaration, indented by two spaces.
func (d *Document) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
