// SPDX-License-Identifier: MPL-2.0

package modmeta

import (
	"errors"
	"io/fs"
	"testing"
)

func TestOrigin_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		origin Origin
		want   bool
	}{
		{OriginLocal, true},
		{OriginPlatform, true},
		{Origin(""), false},
		{Origin("gac"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.origin), func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.origin.IsValid()
			if valid != tt.want {
				t.Errorf("Origin(%q).IsValid() = %v, want %v", tt.origin, valid, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidOrigin)) {
				t.Errorf("expected ErrInvalidOrigin, got %v", errs)
			}
		})
	}
}

func TestDescriptor_IsValid(t *testing.T) {
	t.Parallel()

	good := Descriptor{Name: "Widgets.v3.1", Version: MustVersion("3.1"), Origin: OriginLocal}
	if valid, errs := good.IsValid(); !valid {
		t.Fatalf("expected valid descriptor, got %v", errs)
	}

	bad := Descriptor{Name: "  ", Origin: "elsewhere"}
	valid, errs := bad.IsValid()
	if valid {
		t.Fatal("expected invalid descriptor")
	}
	var descErr *InvalidDescriptorError
	if !errors.As(errs[0], &descErr) {
		t.Fatalf("expected *InvalidDescriptorError, got %T", errs[0])
	}
	if len(descErr.FieldErrors) != 3 {
		t.Errorf("expected 3 field errors (name, version, origin), got %d: %v", len(descErr.FieldErrors), descErr.FieldErrors)
	}
	if !errors.Is(errs[0], ErrInvalidDescriptor) {
		t.Error("error should wrap ErrInvalidDescriptor")
	}
}

func TestDescriptor_String(t *testing.T) {
	t.Parallel()

	d := Descriptor{Name: "Widgets.Core.v3.1", Version: MustVersion("3.1.0.0")}
	if got := d.String(); got != "Widgets.Core.v3.1, 3.1.0.0" {
		t.Errorf("String() = %q", got)
	}
	if got := (Declaration{Name: "System"}).String(); got != "System" {
		t.Errorf("Declaration.String() = %q", got)
	}
}

func TestLoadError(t *testing.T) {
	t.Parallel()

	err := NewLoadError("Unrelated.v1.0", fs.ErrNotExist)
	if !errors.Is(err, ErrLoad) {
		t.Error("LoadError should match ErrLoad")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("LoadError should expose its cause")
	}
	if got := err.Error(); got != "cannot load Unrelated.v1.0: file does not exist" {
		t.Errorf("Error() = %q", got)
	}

	bare := NewLoadError("x", nil)
	if !errors.Is(bare, ErrLoad) {
		t.Error("LoadError without cause should still match ErrLoad")
	}
}
