// Package uri builds obsidian:// URIs for notes so suggestions can be
// opened directly in the editor.
package uri

import (
	"net/url"
	"strings"
)

// ForNote returns an obsidian:/// URI addressing a note by absolute path.
// The .md extension is dropped; Obsidian resolves it itself.
func ForNote(vaultPath, notePath string) string {
	full := vaultPath + "/" + strings.TrimPrefix(notePath, "/")
	full = strings.TrimSuffix(full, ".md")

	parts := strings.Split(full, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return "obsidian:///" + strings.TrimPrefix(strings.Join(parts, "/"), "/")
}
