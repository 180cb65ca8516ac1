package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/vaultlink/internal/index"
	"github.com/taigrr/vaultlink/internal/linker"
	"github.com/taigrr/vaultlink/internal/zones"
)

func handleScanZones(ctx context.Context, req *mcp.CallToolRequest, input ScanZonesInput) (*mcp.CallToolResult, ScanZonesOutput, error) {
	text := input.Text
	if path := strings.TrimSpace(input.Path); path != "" {
		note, err := noteVault.ReadNote(path)
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, ScanZonesOutput{}, err
		}
		text = note.RawContent
	} else if text == "" {
		return &mcp.CallToolResult{IsError: true}, ScanZonesOutput{},
			fmt.Errorf("either path or text is required")
	}

	return nil, ScanZonesOutput{Zones: zones.Scan(text)}, nil
}

func handleSuggestLinks(ctx context.Context, req *mcp.CallToolRequest, input SuggestLinksInput) (*mcp.CallToolResult, SuggestLinksOutput, error) {
	path := strings.TrimSpace(input.Path)
	note, err := noteVault.ReadNote(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SuggestLinksOutput{}, err
	}
	targets, err := linker.BuildTargets(noteVault, path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SuggestLinksOutput{}, err
	}

	res := linker.InsertLinks(note.RawContent, targets)
	return nil, SuggestLinksOutput{Suggestions: res.Inserted, Skipped: res.Skipped}, nil
}

func handleInsertLinks(ctx context.Context, req *mcp.CallToolRequest, input InsertLinksInput) (*mcp.CallToolResult, InsertLinksOutput, error) {
	path := strings.TrimSpace(input.Path)
	note, err := noteVault.ReadNote(path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, InsertLinksOutput{Path: path}, err
	}
	targets, err := linker.BuildTargets(noteVault, path)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, InsertLinksOutput{Path: path}, err
	}

	res := linker.InsertLinks(note.RawContent, targets)
	out := InsertLinksOutput{Path: path, Inserted: res.Inserted, Skipped: res.Skipped}

	if input.DryRun || len(res.Inserted) == 0 {
		return nil, out, nil
	}

	if err := noteVault.WriteRaw(path, res.Content); err != nil {
		return &mcp.CallToolResult{IsError: true}, out, err
	}
	if err := noteIndex.Refresh(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("index refresh failed")
	}
	indexClient.NoteChanged(path)

	out.Saved = true
	logger.Info().Str("path", path).Int("links", len(res.Inserted)).Msg("links inserted")
	return nil, out, nil
}

func handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := indexClient.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, err
	}
	return nil, SearchOutput{Results: results}, nil
}

func handleBacklinks(ctx context.Context, req *mcp.CallToolRequest, input BacklinksInput) (*mcp.CallToolResult, BacklinksOutput, error) {
	links, err := indexClient.Backlinks(ctx, strings.TrimSpace(input.Path))
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, BacklinksOutput{}, err
	}
	return nil, BacklinksOutput{Backlinks: links}, nil
}

func handleRelated(ctx context.Context, req *mcp.CallToolRequest, input RelatedInput) (*mcp.CallToolResult, RelatedOutput, error) {
	related, err := indexClient.Related(ctx, strings.TrimSpace(input.Path))
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, RelatedOutput{}, err
	}
	return nil, RelatedOutput{Related: related}, nil
}

func handleTags(ctx context.Context, req *mcp.CallToolRequest, input TagsInput) (*mcp.CallToolResult, TagsOutput, error) {
	tags, err := indexClient.Tags(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, TagsOutput{}, err
	}
	return nil, TagsOutput{Tags: tags}, nil
}

func handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, index.Stats, error) {
	stats, err := indexClient.Stats(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, index.Stats{}, err
	}
	return nil, stats, nil
}

func handleHealth(ctx context.Context, req *mcp.CallToolRequest, input HealthInput) (*mcp.CallToolResult, index.Health, error) {
	health, err := indexClient.Health(ctx)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, index.Health{}, err
	}
	return nil, health, nil
}

func handleReindex(ctx context.Context, req *mcp.CallToolRequest, input ReindexInput) (*mcp.CallToolResult, ReindexOutput, error) {
	if err := indexClient.Reindex(ctx); err != nil {
		return &mcp.CallToolResult{IsError: true}, ReindexOutput{}, err
	}
	logger.Info().Msg("vault reindexed")
	return nil, ReindexOutput{Success: true}, nil
}
