// Package pathfilter decides which vault paths link insertion may touch.
package pathfilter

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/taigrr/vaultlink/internal/types"
)

// Filter holds compiled ignore patterns and the extension allowlist.
type Filter struct {
	ignored    []*regexp.Regexp
	extensions []string
}

// defaultIgnored covers vault internals that must never be rewritten.
var defaultIgnored = []string{
	".obsidian/**",
	".git/**",
	".trash/**",
	"node_modules/**",
	".DS_Store",
	"Thumbs.db",
}

var defaultExtensions = []string{".md", ".markdown"}

// New builds a Filter from the defaults plus any extra configuration.
// Patterns support ** (any path), * (within a segment) and ?.
func New(config *types.PathFilterConfig) *Filter {
	patterns := append([]string(nil), defaultIgnored...)
	extensions := append([]string(nil), defaultExtensions...)
	if config != nil {
		patterns = append(patterns, config.IgnoredPatterns...)
		extensions = append(extensions, config.AllowedExtensions...)
	}

	f := &Filter{extensions: extensions}
	for _, p := range patterns {
		if re := compileGlob(p); re != nil {
			f.ignored = append(f.ignored, re)
		}
	}
	return f
}

// Allowed reports whether a vault-relative path may be read and rewritten.
func (f *Filter) Allowed(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	for _, re := range f.ignored {
		if re.MatchString(path) {
			return false
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		// Extension-less paths are directories as far as the walk is
		// concerned; filtering applies to their files instead.
		return true
	}
	for _, allowed := range f.extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// AllowedNote reports whether path is a note file the filter permits:
// allowed by the ignore rules and carrying an allowed extension. Unlike
// Allowed it rejects extension-less paths, which the vault walk would
// otherwise pick up as notes.
func (f *Filter) AllowedNote(path string) bool {
	return filepath.Ext(path) != "" && f.Allowed(path)
}

// compileGlob translates a glob pattern into an anchored regexp. A pattern
// that cannot compile is dropped rather than failing the filter.
func compileGlob(pattern string) *regexp.Regexp {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\*`, "[^/]*")
	quoted = strings.ReplaceAll(quoted, `\?`, "[^/]")
	re, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return nil
	}
	return re
}
