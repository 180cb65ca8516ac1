// Package vault provides path-safe note access inside an Obsidian vault.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taigrr/vaultlink/internal/frontmatter"
	"github.com/taigrr/vaultlink/internal/pathfilter"
	"github.com/taigrr/vaultlink/internal/types"
)

// Vault is a rooted view of an Obsidian vault directory.
type Vault struct {
	root   string
	filter *pathfilter.Filter
}

// Open creates a vault rooted at the given directory.
func Open(root string, filter *pathfilter.Filter) *Vault {
	abs, _ := filepath.Abs(root)
	if filter == nil {
		filter = pathfilter.New(nil)
	}
	return &Vault{root: abs, filter: filter}
}

// Root returns the absolute vault root.
func (v *Vault) Root() string {
	return v.root
}

// Resolve turns a vault-relative path into an absolute one, rejecting
// anything that escapes the vault root.
func (v *Vault) Resolve(path string) (string, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	abs, err := filepath.Abs(filepath.Join(v.root, path))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path escapes vault: %s", path)
	}
	return abs, nil
}

// ReadNote reads and parses a note by vault-relative path.
func (v *Vault) ReadNote(path string) (types.ParsedNote, error) {
	full, err := v.Resolve(path)
	if err != nil {
		return types.ParsedNote{}, err
	}
	if !v.filter.Allowed(path) {
		return types.ParsedNote{}, fmt.Errorf("access denied: %s", path)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.ParsedNote{}, fmt.Errorf("note not found: %s", path)
		}
		return types.ParsedNote{}, fmt.Errorf("read %s: %w", path, err)
	}
	return frontmatter.Parse(string(content)), nil
}

// WriteNote writes a note assembled from frontmatter and body, creating
// parent directories as needed.
func (v *Vault) WriteNote(params types.NoteWriteParams) error {
	content, err := frontmatter.Stringify(params.Frontmatter, params.Content)
	if err != nil {
		return err
	}
	return v.WriteRaw(params.Path, content)
}

// WriteRaw writes already-assembled note text verbatim. Link insertion
// uses this: its edits are computed against the raw text and must not be
// re-serialized through the frontmatter layer.
func (v *Vault) WriteRaw(path, content string) error {
	full, err := v.Resolve(path)
	if err != nil {
		return err
	}
	if !v.filter.Allowed(path) {
		return fmt.Errorf("access denied: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create directories for %s: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Notes walks the vault and returns the sorted vault-relative paths of
// every markdown note the filter allows.
func (v *Vault) Notes() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(v.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && full != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(v.root, full)
		if err != nil {
			return nil
		}
		rel = strings.ReplaceAll(rel, "\\", "/")
		if v.filter.AllowedNote(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
