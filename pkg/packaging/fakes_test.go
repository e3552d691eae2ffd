// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"context"
	"errors"

	"github.com/googol/nupackager/pkg/modmeta"
)

var errNotFound = errors.New("not found")

// fakeLoader resolves declarations from a fixed table keyed by name.
// Names missing from the table fail with a *modmeta.LoadError.
type fakeLoader struct {
	modules  map[string]*modmeta.Module
	resolved map[string]modmeta.Descriptor
	calls    []string
}

func (f *fakeLoader) Describe(_ context.Context, path string) (*modmeta.Module, error) {
	m, ok := f.modules[path]
	if !ok {
		return nil, modmeta.NewLoadError(path, errNotFound)
	}
	return m, nil
}

func (f *fakeLoader) Resolve(_ context.Context, decl modmeta.Declaration) (modmeta.Descriptor, error) {
	f.calls = append(f.calls, decl.Name)
	d, ok := f.resolved[decl.Name]
	if !ok {
		return modmeta.Descriptor{}, modmeta.NewLoadError(decl.Name, errNotFound)
	}
	return d, nil
}

func local(name, version string) modmeta.Descriptor {
	return modmeta.Descriptor{Name: name, Version: modmeta.MustVersion(version), Origin: modmeta.OriginLocal}
}

func platform(name, version string) modmeta.Descriptor {
	return modmeta.Descriptor{Name: name, Version: modmeta.MustVersion(version), Origin: modmeta.OriginPlatform}
}

func decl(name, version string) modmeta.Declaration {
	d := modmeta.Declaration{Name: name}
	if version != "" {
		d.Version = modmeta.MustVersion(version)
	}
	return d
}

func widgetsPolicy() Policy {
	p, err := NewPolicy("Widgets", DefaultFrameworkAllowList)
	if err != nil {
		panic(err)
	}
	return p
}
