// Package frontmatter parses and rewrites YAML frontmatter blocks.
package frontmatter

import (
	"fmt"
	"maps"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/vaultlink/internal/types"
)

// Parse splits note content into frontmatter and body. Content without a
// well-formed leading "---" block, or with YAML that fails to parse, comes
// back unchanged with an empty frontmatter map.
func Parse(content string) types.ParsedNote {
	note := types.ParsedNote{
		Frontmatter: make(map[string]any),
		Content:     content,
		RawContent:  content,
	}

	if !strings.HasPrefix(content, "---\n") {
		return note
	}

	end := strings.Index(content[4:], "\n---\n")
	bodyStart := end + 4 + 5
	if end == -1 {
		// A block closed by "---" at the very end of the file has no
		// trailing newline to match on.
		if !strings.HasSuffix(content, "\n---") {
			return note
		}
		end = len(content) - 4 - 4
		bodyStart = len(content)
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(content[4:end+4]), &fm); err != nil {
		return note
	}
	if fm != nil {
		note.Frontmatter = fm
	}
	note.Content = content[bodyStart:]
	return note
}

// Stringify reassembles frontmatter and body into note content. An empty
// frontmatter map yields the body alone, with no delimiter block.
func Stringify(fm map[string]any, content string) (string, error) {
	if len(fm) == 0 {
		return content, nil
	}
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---\n" + content, nil
}

// Update merges updates into the existing frontmatter of content and
// returns the rewritten note. Updated keys win over existing ones.
func Update(content string, updates map[string]any) (string, error) {
	note := Parse(content)
	merged := make(map[string]any, len(note.Frontmatter)+len(updates))
	maps.Copy(merged, note.Frontmatter)
	maps.Copy(merged, updates)
	return Stringify(merged, note.Content)
}
