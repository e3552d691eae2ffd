// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/googol/nupackager/pkg/cueutil"
	"github.com/googol/nupackager/pkg/modmeta"
)

// SidecarSuffix is appended to a binary's file name to locate its descriptor.
const SidecarSuffix = ".module.cue"

//go:embed module_schema.cue
var moduleSchema []byte

var (
	// ErrNotFound is returned when no probe location knows a reference.
	ErrNotFound = errors.New("module not found")
	// ErrVersionMismatch is returned when a located module has a different
	// version than the one requested.
	ErrVersionMismatch = errors.New("module version mismatch")
	// ErrNameMismatch is returned when a sidecar declares a different name
	// than the one its file name was probed for.
	ErrNameMismatch = errors.New("module name mismatch")

	// DefaultExtensions are the binary extensions probed, in order.
	DefaultExtensions = []string{".dll", ".exe"}
)

type (
	sidecar struct {
		Name       string         `json:"name"`
		Version    string         `json:"version"`
		References []sidecarEntry `json:"references,omitempty"`
	}

	sidecarEntry struct {
		Name    string `json:"name"`
		Version string `json:"version,omitempty"`
	}

	// Loader describes modules from their sidecars. Resolutions are cached for
	// the lifetime of the Loader, so use one Loader per run.
	Loader struct {
		appDir       string
		platformDirs []string
		components   map[string]struct{}
		extensions   []string

		mu    sync.Mutex
		cache map[string]resolution
	}

	resolution struct {
		desc modmeta.Descriptor
		err  error
	}

	// Option configures a Loader.
	Option func(*Loader)
)

// WithPlatformComponents registers component names that the target platform
// provides.
func WithPlatformComponents(names ...string) Option {
	return func(l *Loader) {
		for _, n := range names {
			l.components[n] = struct{}{}
		}
	}
}

// WithPlatformDirs adds directories holding platform-provided modules.
func WithPlatformDirs(dirs ...string) Option {
	return func(l *Loader) { l.platformDirs = append(l.platformDirs, dirs...) }
}

// New creates a Loader whose application directory is appDir.
func New(appDir string, opts ...Option) *Loader {
	l := &Loader{
		appDir:     appDir,
		components: make(map[string]struct{}),
		extensions: DefaultExtensions,
		cache:      make(map[string]resolution),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SidecarPath returns the descriptor path for a binary.
func SidecarPath(binary string) string {
	return binary + SidecarSuffix
}

// Describe reads the sidecar of the binary at path. The module is Local.
func (l *Loader) Describe(ctx context.Context, path string) (*modmeta.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, modmeta.NewLoadError(path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, modmeta.NewLoadError(path, err)
	}
	if info.IsDir() {
		return nil, modmeta.NewLoadError(path, fmt.Errorf("%s is a directory", path))
	}

	m, err := readSidecar(path, modmeta.OriginLocal)
	if err != nil {
		return nil, modmeta.NewLoadError(path, err)
	}
	return m, nil
}

// Resolve locates the module decl refers to.
func (l *Loader) Resolve(ctx context.Context, decl modmeta.Declaration) (modmeta.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return modmeta.Descriptor{}, modmeta.NewLoadError(decl.Name, err)
	}

	key := decl.String()
	l.mu.Lock()
	if r, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return r.desc, r.err
	}
	l.mu.Unlock()

	desc, err := l.resolve(decl)

	l.mu.Lock()
	l.cache[key] = resolution{desc: desc, err: err}
	l.mu.Unlock()

	return desc, err
}

// resolve checks the platform before the application directory, so a copy
// of a platform component shipped next to the modules stays a platform
// component.
func (l *Loader) resolve(decl modmeta.Declaration) (modmeta.Descriptor, error) {
	if _, ok := l.components[decl.Name]; ok {
		return modmeta.Descriptor{Name: decl.Name, Version: decl.Version, Origin: modmeta.OriginPlatform}, nil
	}
	for _, dir := range l.platformDirs {
		if desc, found, err := l.probe(dir, decl, modmeta.OriginPlatform); found {
			return desc, err
		}
	}
	if desc, found, err := l.probe(l.appDir, decl, modmeta.OriginLocal); found {
		return desc, err
	}
	return modmeta.Descriptor{}, modmeta.NewLoadError(decl.Name, ErrNotFound)
}

// probe looks for <dir>/<name><ext> with a sidecar. found is false when no
// candidate exists, so the caller can move on to the next location.
func (l *Loader) probe(dir string, decl modmeta.Declaration, origin modmeta.Origin) (desc modmeta.Descriptor, found bool, err error) {
	if dir == "" {
		return modmeta.Descriptor{}, false, nil
	}
	for _, ext := range l.extensions {
		binary := filepath.Join(dir, decl.Name+ext)
		if !fileExists(binary) || !fileExists(SidecarPath(binary)) {
			continue
		}

		m, readErr := readSidecar(binary, origin)
		if readErr != nil {
			return modmeta.Descriptor{}, true, modmeta.NewLoadError(decl.Name, readErr)
		}
		if !strings.EqualFold(m.Descriptor.Name, decl.Name) {
			return modmeta.Descriptor{}, true, modmeta.NewLoadError(decl.Name,
				fmt.Errorf("%w: %s declares %q", ErrNameMismatch, SidecarPath(binary), m.Descriptor.Name))
		}
		if !decl.Version.IsZero() && !decl.Version.Equal(m.Descriptor.Version) {
			return modmeta.Descriptor{}, true, modmeta.NewLoadError(decl.Name,
				fmt.Errorf("%w: requested %s, found %s", ErrVersionMismatch, decl.Version, m.Descriptor.Version))
		}
		return m.Descriptor, true, nil
	}
	return modmeta.Descriptor{}, false, nil
}

func readSidecar(binary string, origin modmeta.Origin) (*modmeta.Module, error) {
	sc, err := cueutil.DecodeFile[sidecar](moduleSchema, SidecarPath(binary), "#Module")
	if err != nil {
		return nil, err
	}

	version, err := modmeta.ParseVersion(sc.Version)
	if err != nil {
		return nil, err
	}

	decls := make([]modmeta.Declaration, 0, len(sc.References))
	for _, ref := range sc.References {
		d := modmeta.Declaration{Name: ref.Name}
		if ref.Version != "" {
			if d.Version, err = modmeta.ParseVersion(ref.Version); err != nil {
				return nil, fmt.Errorf("reference %s: %w", ref.Name, err)
			}
		}
		decls = append(decls, d)
	}

	return &modmeta.Module{
		Descriptor:   modmeta.Descriptor{Name: sc.Name, Version: version, Origin: origin},
		Path:         binary,
		Declarations: decls,
	}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
