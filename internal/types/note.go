// Package types defines the data structures shared across vaultlink's
// vault, index and linker layers.
package types

type (
	// ParsedNote is a markdown note split into frontmatter and body.
	ParsedNote struct {
		Frontmatter map[string]any `json:"frontmatter"`
		Content     string         `json:"content"`
		// RawContent is the full on-disk text, frontmatter included.
		// Zone offsets always refer to this string.
		RawContent string `json:"rawContent"`
	}

	// NoteWriteParams describes a note write.
	NoteWriteParams struct {
		Path        string         `json:"path"`
		Content     string         `json:"content"`
		Frontmatter map[string]any `json:"frontmatter,omitempty"`
	}

	// PathFilterConfig extends the default ignore rules for vault walks.
	PathFilterConfig struct {
		IgnoredPatterns   []string `json:"ignoredPatterns"`
		AllowedExtensions []string `json:"allowedExtensions"`
	}
)

// Aliases returns the note's frontmatter aliases, tolerating both string
// and list values the way Obsidian does.
func (n ParsedNote) Aliases() []string {
	raw, ok := n.Frontmatter["aliases"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}
