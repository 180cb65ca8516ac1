package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taigrr/vaultlink/internal/toolcache"
)

// Client fronts an Invoker with the tiered response cache. Every read
// goes through the cache; mutations bypass it and trigger invalidation.
type Client struct {
	inv   Invoker
	cache *toolcache.Cache
}

// NewClient wraps an invoker with a cache.
func NewClient(inv Invoker, cache *toolcache.Cache) *Client {
	return &Client{inv: inv, cache: cache}
}

func (c *Client) call(ctx context.Context, tool string, args map[string]any, out any) error {
	data, err := c.cache.Do(ctx, tool, args, func(ctx context.Context) (json.RawMessage, error) {
		return c.inv.Invoke(ctx, tool, args)
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", tool, err)
	}
	return nil
}

// Capabilities reports the index tool surface. Session tier: fetched once
// per process.
func (c *Client) Capabilities(ctx context.Context) (Capabilities, error) {
	var caps Capabilities
	err := c.call(ctx, ToolCapabilities, nil, &caps)
	return caps, err
}

// Search finds notes matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	var results []SearchResult
	args := map[string]any{"query": query}
	if limit > 0 {
		args["limit"] = limit
	}
	err := c.call(ctx, ToolSearch, args, &results)
	return results, err
}

// Backlinks lists notes linking to the note at path.
func (c *Client) Backlinks(ctx context.Context, path string) ([]Backlink, error) {
	var links []Backlink
	err := c.call(ctx, ToolBacklinks, map[string]any{"path": path}, &links)
	return links, err
}

// Related lists notes connected to the note at path by links or tags.
func (c *Client) Related(ctx context.Context, path string) ([]Related, error) {
	var related []Related
	err := c.call(ctx, ToolRelated, map[string]any{"path": path}, &related)
	return related, err
}

// Tags lists every tag in the vault with occurrence counts.
func (c *Client) Tags(ctx context.Context) ([]TagCount, error) {
	var tags []TagCount
	err := c.call(ctx, ToolTags, nil, &tags)
	return tags, err
}

// Stats returns vault-wide link-graph numbers.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.call(ctx, ToolStats, nil, &s)
	return s, err
}

// Health summarizes vault condition.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.call(ctx, ToolHealth, nil, &h)
	return h, err
}

// Reindex rebuilds the index and clears the cache: every derived result
// may have changed.
func (c *Client) Reindex(ctx context.Context) error {
	if err := c.call(ctx, ToolReindex, nil, nil); err != nil {
		return err
	}
	c.cache.Clear()
	return nil
}

// NoteChanged reports that a note was mutated outside the index's view.
// Entries naming the path are dropped along with the vault-wide
// aggregates; other notes' entries stay.
func (c *Client) NoteChanged(path string) {
	c.cache.InvalidatePath(path)
	c.cache.InvalidateTool(ToolSearch)
	c.cache.InvalidateTool(ToolTags)
	c.cache.InvalidateTool(ToolStats)
	c.cache.InvalidateTool(ToolHealth)
}
