// SPDX-License-Identifier: MPL-2.0

package packaging

import (
	"errors"
	"slices"
	"testing"
)

func TestNewPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prefix  string
		allow   []string
		wantErr bool
	}{
		{"defaults", DefaultFamilyPrefix, DefaultFrameworkAllowList, false},
		{"empty_allow_list", "Widgets", nil, false},
		{"empty_prefix", "", DefaultFrameworkAllowList, true},
		{"blank_prefix", "   ", nil, true},
		{"blank_allow_entry", "Widgets", []string{"PresentationCore", " "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewPolicy(tt.prefix, tt.allow)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPolicy) {
					t.Errorf("NewPolicy() error = %v, want ErrInvalidPolicy", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewPolicy() returned error: %v", err)
			}
		})
	}
}

func TestPolicy_IsManaged(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	tests := []struct {
		name string
		want bool
	}{
		{"Infragistics.Core.v14.2", true},
		{"infragistics.core.v14.2", true},
		{"INFRAGISTICS", true},
		{"InfragisticsWPF4.v14.2", true},
		{"Infra", false},
		{"Newtonsoft.Json", false},
		{"My.Infragistics.Helpers", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.IsManaged(tt.name); got != tt.want {
			t.Errorf("IsManaged(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPolicy_IsAllowedFramework(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	for _, name := range DefaultFrameworkAllowList {
		if !p.IsAllowedFramework(name) {
			t.Errorf("IsAllowedFramework(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"System.Drawing", "mscorlib", "presentationcore", ""} {
		if p.IsAllowedFramework(name) {
			t.Errorf("IsAllowedFramework(%q) = true, want false", name)
		}
	}
}

func TestPolicy_ZeroValue(t *testing.T) {
	t.Parallel()

	var p Policy
	if p.IsManaged("Anything") {
		t.Error("zero Policy must manage nothing")
	}
	if p.IsAllowedFramework("PresentationCore") {
		t.Error("zero Policy must allow nothing")
	}
}

func TestPolicy_FrameworkAllowListIsCopy(t *testing.T) {
	t.Parallel()

	p, err := NewPolicy("Widgets", []string{"WindowsBase", "System.Xaml", "WindowsBase"})
	if err != nil {
		t.Fatalf("NewPolicy() returned error: %v", err)
	}

	list := p.FrameworkAllowList()
	if !slices.Equal(list, []string{"WindowsBase", "System.Xaml"}) {
		t.Errorf("FrameworkAllowList() = %v", list)
	}
	list[0] = "Mutated"
	if !p.IsAllowedFramework("WindowsBase") || p.FrameworkAllowList()[0] != "WindowsBase" {
		t.Error("mutating the returned slice must not affect the policy")
	}
}
