// SPDX-License-Identifier: MPL-2.0

package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/googol/nupackager/pkg/packaging"
)

type (
	// Result is the outcome of one module.
	Result struct {
		// Path is the module binary.
		Path string
		// PackageID is empty when the module itself could not be described.
		PackageID string
		// State is StateReady on success and StateAborted on failure.
		State packaging.State
		// References are the kept references, including broken ones.
		References packaging.References
		// Metadata is set on success.
		Metadata *packaging.PackageMetadata
		// Output is the written file; empty in dry runs.
		Output string
		// Err is set on failure.
		Err error
	}

	// Summary is the ordered outcome of a run.
	Summary struct {
		Dir     string
		DryRun  bool
		Results []Result
	}

	report struct {
		Dir       string         `yaml:"dir"`
		DryRun    bool           `yaml:"dryRun,omitempty"`
		Succeeded int            `yaml:"succeeded"`
		Failed    int            `yaml:"failed"`
		Modules   []moduleReport `yaml:"modules"`
	}

	moduleReport struct {
		Path             string                     `yaml:"path"`
		ID               string                     `yaml:"id,omitempty"`
		State            string                     `yaml:"state"`
		Output           string                     `yaml:"output,omitempty"`
		Error            string                     `yaml:"error,omitempty"`
		BrokenReferences []string                   `yaml:"brokenReferences,omitempty"`
		Package          *packaging.PackageMetadata `yaml:"package,omitempty"`
	}
)

// OK reports whether the module reached StateReady.
func (r Result) OK() bool {
	return r.State == packaging.StateReady && r.Err == nil
}

// Name returns the package id, or the file name when the module could not
// be described.
func (r Result) Name() string {
	if r.PackageID != "" {
		return r.PackageID
	}
	return filepath.Base(r.Path)
}

// BrokenReferences returns the raw names of every broken reference when the
// module failed because of them.
func (r Result) BrokenReferences() []string {
	var bre *packaging.BrokenReferenceError
	if errors.As(r.Err, &bre) {
		return bre.References
	}
	return nil
}

// Succeeded returns the successful results in order.
func (s *Summary) Succeeded() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the failed results in order.
func (s *Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// HasFailures reports whether any module failed.
func (s *Summary) HasFailures() bool {
	return len(s.Failed()) > 0
}

// WriteReport writes the summary as YAML.
func (s *Summary) WriteReport(w io.Writer) error {
	rep := report{
		Dir:       s.Dir,
		DryRun:    s.DryRun,
		Succeeded: len(s.Succeeded()),
		Failed:    len(s.Failed()),
		Modules:   make([]moduleReport, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		m := moduleReport{
			Path:             r.Path,
			ID:               r.PackageID,
			State:            r.State.String(),
			Output:           r.Output,
			BrokenReferences: r.BrokenReferences(),
			Package:          r.Metadata,
		}
		if r.Err != nil {
			m.Error = r.Err.Error()
		}
		rep.Modules = append(rep.Modules, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// WriteReportFile writes the YAML report to path.
func (s *Summary) WriteReportFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return s.WriteReport(f)
}
