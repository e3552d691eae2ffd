// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestOutputFormat_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value OutputFormat
		want  bool
	}{
		{OutputFormatNupkg, true},
		{OutputFormatNuspec, true},
		{"", false},
		{"NUPKG", false},
	}
	for _, tt := range tests {
		ok, errs := tt.value.IsValid()
		if ok != tt.want {
			t.Errorf("OutputFormat(%q).IsValid() = %v, want %v", tt.value, ok, tt.want)
		}
		if !ok && !errors.Is(errs[0], ErrInvalidOutputFormat) {
			t.Errorf("OutputFormat(%q) error should wrap ErrInvalidOutputFormat", tt.value)
		}
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if ok, errs := DefaultConfig().IsValid(); !ok {
		t.Fatalf("DefaultConfig().IsValid() = false, %v", errs)
	}

	cfg := DefaultConfig()
	cfg.Family.Prefix = " "
	cfg.Output.Format = "tar"
	cfg.Framework.Target = ""
	ok, errs := cfg.IsValid()
	if ok || len(errs) != 1 {
		t.Fatalf("IsValid() = %v, %v", ok, errs)
	}

	err := errs[0]
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidFamilyConfig, ErrInvalidOutputFormat} {
		if !errors.Is(err, sentinel) {
			t.Errorf("error should wrap %v", sentinel)
		}
	}
	if !strings.Contains(err.Error(), "framework.target") {
		t.Errorf("error should mention framework.target: %v", err)
	}
}

func TestManifestConfig_DescriptionTemplate(t *testing.T) {
	t.Parallel()

	tmpl, err := DefaultConfig().Manifest.DescriptionTemplate()
	if err != nil {
		t.Fatalf("DescriptionTemplate() error = %v", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, DescriptionData{Family: "Infragistics", Name: "Infragistics.Widgets.v11.2"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := "This package contains the Infragistics assembly Infragistics.Widgets.v11.2."; b.String() != want {
		t.Errorf("description = %q, want %q", b.String(), want)
	}
}
