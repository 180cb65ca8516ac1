// Package index implements the note-index tool surface: link-graph
// queries, tag aggregation, search and vault health, addressed by tool
// name so the response cache can classify and front every call.
package index

import (
	"context"
	"encoding/json"
)

// Tool names understood by the index. The toolcache tier table keys off
// these names; changing one here means changing it there.
const (
	ToolCapabilities = "capabilities"
	ToolSearch       = "search"
	ToolBacklinks    = "backlinks"
	ToolRelated      = "related"
	ToolTags         = "tags"
	ToolStats        = "stats"
	ToolHealth       = "health"
	ToolReindex      = "reindex"
)

// Invoker executes a named tool against an index. Implementations own
// serialization and per-call timeouts; callers treat the invocation as an
// opaque asynchronous function.
type Invoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error)
}

type (
	// Capabilities describes the index's static tool surface.
	Capabilities struct {
		Version string   `json:"version"`
		Tools   []string `json:"tools"`
	}

	// SearchResult is one matching note for a search query.
	SearchResult struct {
		Path    string `json:"path"`
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
		Line    int    `json:"line"`
		URI     string `json:"uri"`
	}

	// Backlink records a note that links to the queried note.
	Backlink struct {
		Path string `json:"path"`
		URI  string `json:"uri"`
	}

	// Related records a note connected to the queried note.
	Related struct {
		Path       string   `json:"path"`
		Relation   string   `json:"relation"` // "backlink", "outgoing" or "shared-tags"
		SharedTags []string `json:"sharedTags,omitempty"`
	}

	// TagCount is a tag with its number of occurrences across the vault.
	TagCount struct {
		Tag   string `json:"tag"`
		Count int    `json:"count"`
	}

	// Stats aggregates vault-wide link-graph numbers.
	Stats struct {
		Notes       int `json:"notes"`
		Links       int `json:"links"`
		Tags        int `json:"tags"`
		Orphans     int `json:"orphans"`
		BrokenLinks int `json:"brokenLinks"`
	}

	// Health summarizes vault condition for dashboards.
	Health struct {
		Status      string  `json:"status"` // "healthy", "fair" or "poor"
		OrphanRatio float64 `json:"orphanRatio"`
		BrokenLinks int     `json:"brokenLinks"`
	}
)
