// SPDX-License-Identifier: MPL-2.0

package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/googol/nupackager/internal/discovery"
	"github.com/googol/nupackager/internal/nuspec"
	"github.com/googol/nupackager/pkg/modmeta"
	"github.com/googol/nupackager/pkg/packaging"
)

type (
	// DescriptionSource may replace the synthesized description of a
	// package. Returning an empty string keeps the synthesized one.
	DescriptionSource interface {
		Description(ctx context.Context, module modmeta.Descriptor, md *packaging.PackageMetadata) (string, error)
	}

	// Packer turns a written manifest into a distributable package.
	Packer interface {
		Pack(ctx context.Context, manifest string) error
	}

	// Options configure a Runner.
	Options struct {
		// Pattern selects module binaries in the scan directory.
		Pattern string
		// TargetFramework places module binaries under lib/<TargetFramework>.
		TargetFramework string
		// Template supplies authors and the default description.
		Template packaging.ManifestTemplate
		// Writer persists manifests. It is not used in dry runs.
		Writer nuspec.Writer
		// Packer is optional and runs after every successful write.
		Packer Packer
		// Descriptions is optional.
		Descriptions DescriptionSource
		// DryRun stops after synthesis.
		DryRun bool
		// OnResult is called after each module finishes, in order.
		OnResult func(Result)
	}

	// Runner processes the modules of one directory.
	Runner struct {
		loader     modmeta.Loader
		classifier *packaging.Classifier
		opts       Options
	}
)

// NewRunner creates a Runner. loader is used both to describe modules and to
// resolve their references.
func NewRunner(loader modmeta.Loader, policy packaging.Policy, opts Options) (*Runner, error) {
	if opts.Writer == nil && !opts.DryRun {
		return nil, fmt.Errorf("batch: a Writer is required unless DryRun is set")
	}
	if opts.Template.Describe == nil {
		opts.Template.Describe = packaging.FamilyDescriber(policy.FamilyPrefix())
	}
	return &Runner{
		loader:     loader,
		classifier: packaging.NewClassifier(loader, policy),
		opts:       opts,
	}, nil
}

// Run discovers the modules of dir and processes each of them. Module
// failures are recorded in the Summary. The returned error is non-nil only
// when discovery fails or ctx is cancelled, in which case the Summary holds
// the modules finished so far.
func (r *Runner) Run(ctx context.Context, dir string) (*Summary, error) {
	paths, err := discovery.Find(dir, r.opts.Pattern)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Dir: dir, DryRun: r.opts.DryRun}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("packaging run canceled: %w", err)
		}

		res := r.Process(ctx, path)
		summary.Results = append(summary.Results, res)
		if r.opts.OnResult != nil {
			r.opts.OnResult(res)
		}
	}
	return summary, nil
}

// Process runs one module through describe, classify, synthesize and write.
func (r *Runner) Process(ctx context.Context, path string) Result {
	res := Result{Path: path}
	tracker := packaging.NewTracker()

	fail := func(err error) Result {
		if abortErr := tracker.Abort(err); abortErr != nil {
			slog.Warn("module state", "path", path, "error", abortErr)
		}
		res.State = tracker.State()
		res.Err = err
		slog.Debug("module aborted", "path", path, "error", err)
		return res
	}

	module, err := r.loader.Describe(ctx, path)
	if err != nil {
		return fail(err)
	}
	res.PackageID = packaging.DescriptorID(module.Descriptor)
	if err := tracker.Advance(packaging.StateDescribed); err != nil {
		return fail(err)
	}

	if err := tracker.Advance(packaging.StateClassifying); err != nil {
		return fail(err)
	}
	refs, err := r.classifier.Classify(ctx, module.Declarations)
	if err != nil {
		return fail(err)
	}
	res.References = refs

	md, err := packaging.Synthesize(module.Descriptor, refs, r.opts.Template)
	if err != nil {
		return fail(err)
	}

	if r.opts.Descriptions != nil {
		desc, descErr := r.opts.Descriptions.Description(ctx, module.Descriptor, md)
		if descErr != nil {
			return fail(fmt.Errorf("read description for %s: %w", md.ID, descErr))
		}
		if strings.TrimSpace(desc) != "" {
			md, err = packaging.Synthesize(module.Descriptor, refs, r.opts.Template.WithDescription(desc))
			if err != nil {
				return fail(err)
			}
		}
	}

	if !r.opts.DryRun {
		placement := packaging.Placement(path, r.opts.TargetFramework)
		out, writeErr := r.opts.Writer.Write(ctx, md, []packaging.FilePlacement{placement})
		if writeErr != nil {
			return fail(writeErr)
		}
		res.Output = out

		if r.opts.Packer != nil {
			if packErr := r.opts.Packer.Pack(ctx, out); packErr != nil {
				return fail(packaging.NewWriteError(md.ID, out, packErr))
			}
		}
	}

	if err := tracker.Advance(packaging.StateReady); err != nil {
		return fail(err)
	}
	res.State = tracker.State()
	res.Metadata = md
	return res
}
