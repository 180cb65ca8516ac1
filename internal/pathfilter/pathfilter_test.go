package pathfilter

import (
	"testing"

	"github.com/taigrr/vaultlink/internal/types"
)

func TestAllowed(t *testing.T) {
	f := New(nil)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"markdown note", "notes/daily.md", true},
		{"nested markdown", "projects/2024/plan.markdown", true},
		{"obsidian internals", ".obsidian/workspace.json", false},
		{"git internals", ".git/HEAD", false},
		{"trash", ".trash/old.md", false},
		{"ds store", ".DS_Store", false},
		{"non-markdown file", "assets/image.png", false},
		{"directory without extension", "projects/2024", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Allowed(tt.path); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestAllowedWithConfig(t *testing.T) {
	f := New(&types.PathFilterConfig{
		IgnoredPatterns:   []string{"templates/**"},
		AllowedExtensions: []string{".txt"},
	})

	if f.Allowed("templates/daily.md") {
		t.Error("Allowed() = true for configured ignore pattern")
	}
	if !f.Allowed("notes/log.txt") {
		t.Error("Allowed() = false for configured extension")
	}
	if !f.Allowed("notes/daily.md") {
		t.Error("Allowed() = false for default extension")
	}
}

func TestAllowedNote(t *testing.T) {
	f := New(nil)
	if f.AllowedNote("projects/2024") {
		t.Error("AllowedNote() = true for extension-less path")
	}
	if f.AllowedNote("LICENSE") {
		t.Error("AllowedNote() = true for extension-less file")
	}
	if !f.AllowedNote("notes/daily.md") {
		t.Error("AllowedNote() = false for markdown note")
	}
}

func TestWindowsSeparators(t *testing.T) {
	f := New(nil)
	if f.Allowed(`.obsidian\workspace.json`) {
		t.Error("Allowed() = true for backslash-separated ignored path")
	}
}
