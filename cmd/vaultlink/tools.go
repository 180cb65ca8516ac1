package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/vaultlink/internal/index"
	"github.com/taigrr/vaultlink/internal/linker"
	"github.com/taigrr/vaultlink/internal/zones"
)

type (
	// ScanZonesInput contains parameters for scanning protected zones.
	ScanZonesInput struct {
		Path string `json:"path,omitempty" jsonschema:"Path to the note relative to vault root"`
		Text string `json:"text,omitempty" jsonschema:"Raw markdown text to scan instead of a note"`
	}

	// ScanZonesOutput lists the protected zones found in a note.
	ScanZonesOutput struct {
		Zones []zones.Zone `json:"zones"`
	}

	// SuggestLinksInput contains parameters for suggesting wikilinks.
	SuggestLinksInput struct {
		Path string `json:"path" jsonschema:"Path to the note relative to vault root"`
	}

	// SuggestLinksOutput lists candidate wikilink insertions.
	SuggestLinksOutput struct {
		Suggestions []linker.Suggestion `json:"suggestions"`
		Skipped     int                 `json:"skipped"`
	}

	// InsertLinksInput contains parameters for inserting wikilinks.
	InsertLinksInput struct {
		Path   string `json:"path" jsonschema:"Path to the note relative to vault root"`
		DryRun bool   `json:"dryRun,omitempty" jsonschema:"Report the rewrite without saving (default: false)"`
	}

	// InsertLinksOutput contains the result of a link insertion pass.
	InsertLinksOutput struct {
		Path     string              `json:"path"`
		Inserted []linker.Suggestion `json:"inserted"`
		Skipped  int                 `json:"skipped"`
		Saved    bool                `json:"saved"`
	}

	// SearchInput contains parameters for searching notes.
	SearchInput struct {
		Query string `json:"query" jsonschema:"Search query (case-insensitive substring)"`
		Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default: 15)"`
	}

	// SearchOutput contains search results.
	SearchOutput struct {
		Results []index.SearchResult `json:"results"`
	}

	// BacklinksInput contains parameters for listing backlinks.
	BacklinksInput struct {
		Path string `json:"path" jsonschema:"Path to the note relative to vault root"`
	}

	// BacklinksOutput lists notes linking to the given note.
	BacklinksOutput struct {
		Backlinks []index.Backlink `json:"backlinks"`
	}

	// RelatedInput contains parameters for finding related notes.
	RelatedInput struct {
		Path string `json:"path" jsonschema:"Path to the note relative to vault root"`
	}

	// RelatedOutput lists notes related by links or shared tags.
	RelatedOutput struct {
		Related []index.Related `json:"related"`
	}

	// TagsInput contains parameters for listing all tags.
	TagsInput struct{}

	// TagsOutput contains every tag in the vault with counts.
	TagsOutput struct {
		Tags []index.TagCount `json:"tags"`
	}

	// StatsInput contains parameters for vault statistics.
	StatsInput struct{}

	// HealthInput contains parameters for the vault health check.
	HealthInput struct{}

	// ReindexInput contains parameters for a full reindex.
	ReindexInput struct{}

	// ReindexOutput confirms the reindex completed.
	ReindexOutput struct {
		Success bool `json:"success"`
	}
)

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_zones",
		Description: "Scan a note (or raw text) for protected markdown zones: frontmatter, code, links, tags, HTML, comments, math, headers and callouts. Returns byte-offset ranges that link insertion must not touch.",
	}, handleScanZones)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_links",
		Description: "Suggest wikilinks for a note: find plain-prose mentions of other note names or aliases that sit outside every protected zone. Does not modify the note.",
	}, handleSuggestLinks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "insert_links",
		Description: "Insert wikilinks into a note for mentions of other notes, skipping protected zones. Set dryRun=true to preview without saving.",
	}, handleInsertLinks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search across all notes. Case-insensitive substring match with excerpt and line number per result.",
	}, handleSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "backlinks",
		Description: "List the notes that link to a given note.",
	}, handleBacklinks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "related",
		Description: "Find notes related to a given note through backlinks, outgoing links or shared tags.",
	}, handleRelated)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tags",
		Description: "List all unique tags across the vault with occurrence counts, from both frontmatter and inline #tags.",
	}, handleTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Vault statistics: note, link and tag counts plus orphaned notes and broken links.",
	}, handleStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "health",
		Description: "Vault health summary derived from the orphan ratio and broken link count.",
	}, handleHealth)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the note index from disk and drop all cached query results.",
	}, handleReindex)
}
