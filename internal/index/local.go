package index

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taigrr/vaultlink/internal/uri"
	"github.com/taigrr/vaultlink/internal/vault"
)

// Version of the index tool surface, reported by capabilities.
const Version = "1"

var (
	// [[note]], [[note#heading]] or [[note|alias]]; capture is the target.
	linkPattern = regexp.MustCompile(`\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|[^\]]+)?\]\]`)
	// inline #tag, anchored to whitespace or line start.
	inlineTagPattern = regexp.MustCompile(`(?:^|\s)#([a-zA-Z0-9_/-]+)`)
)

// Local is an Invoker backed by scanning the vault directly. It keeps an
// in-memory link-graph snapshot that reindex rebuilds; everything else is
// answered from the snapshot plus targeted file reads.
type Local struct {
	vault *vault.Vault
	log   zerolog.Logger

	mu    sync.Mutex
	graph *graph
}

type noteEntry struct {
	path  string
	name  string // lowercased basename without extension
	links []string
	tags  []string
}

type graph struct {
	notes  []noteEntry
	byName map[string]string // lowercased note name -> path
}

// NewLocal creates a local index over the given vault.
func NewLocal(v *vault.Vault, logger zerolog.Logger) *Local {
	return &Local{vault: v, log: logger.With().Str("component", "index").Logger()}
}

// Invoke dispatches a tool call by name and returns its JSON result.
func (l *Local) Invoke(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error) {
	var (
		result any
		err    error
	)
	switch tool {
	case ToolCapabilities:
		result = Capabilities{
			Version: Version,
			Tools: []string{
				ToolCapabilities, ToolSearch, ToolBacklinks, ToolRelated,
				ToolTags, ToolStats, ToolHealth, ToolReindex,
			},
		}
	case ToolSearch:
		result, err = l.search(stringArg(args, "query"), intArg(args, "limit"))
	case ToolBacklinks:
		result, err = l.backlinks(stringArg(args, "path"))
	case ToolRelated:
		result, err = l.related(stringArg(args, "path"))
	case ToolTags:
		result, err = l.tagCounts()
	case ToolStats:
		result, err = l.stats()
	case ToolHealth:
		result, err = l.health()
	case ToolReindex:
		result, err = l.reindex()
	default:
		return nil, fmt.Errorf("unknown tool: %s", tool)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tool, err)
	}
	return json.Marshal(result)
}

// snapshot returns the current graph, building it on first use.
func (l *Local) snapshot() (*graph, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.graph != nil {
		return l.graph, nil
	}
	g, err := l.build()
	if err != nil {
		return nil, err
	}
	l.graph = g
	return g, nil
}

func (l *Local) reindex() (map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, err := l.build()
	if err != nil {
		return nil, err
	}
	l.graph = g
	l.log.Debug().Int("notes", len(g.notes)).Msg("reindexed vault")
	return map[string]any{"ok": true, "notes": len(g.notes)}, nil
}

// Refresh re-scans a single note after an edit, replacing its graph entry
// in place. A note that no longer exists is dropped from the graph. No-op
// until the graph has been built.
func (l *Local) Refresh(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.graph == nil {
		return nil
	}

	name := noteName(path)
	kept := l.graph.notes[:0]
	for _, n := range l.graph.notes {
		if n.path != path {
			kept = append(kept, n)
		}
	}
	l.graph.notes = kept
	delete(l.graph.byName, name)

	note, err := l.vault.ReadNote(path)
	if err != nil {
		l.log.Debug().Str("path", path).Msg("removed note from graph")
		return nil
	}
	l.graph.notes = append(l.graph.notes, noteEntry{
		path:  path,
		name:  name,
		links: extractLinks(note.Content),
		tags:  extractTags(note.Frontmatter, note.Content),
	})
	l.graph.byName[name] = path
	return nil
}

// build scans every note once. Caller holds l.mu.
func (l *Local) build() (*graph, error) {
	paths, err := l.vault.Notes()
	if err != nil {
		return nil, err
	}

	g := &graph{byName: make(map[string]string, len(paths))}
	for _, path := range paths {
		note, err := l.vault.ReadNote(path)
		if err != nil {
			continue
		}
		name := noteName(path)
		g.notes = append(g.notes, noteEntry{
			path:  path,
			name:  name,
			links: extractLinks(note.Content),
			tags:  extractTags(note.Frontmatter, note.Content),
		})
		g.byName[name] = path
	}
	return g, nil
}

func (l *Local) search(query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		limit = 15
	}

	g, err := l.snapshot()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := []SearchResult{}
	for _, n := range g.notes {
		if len(results) >= limit {
			break
		}
		note, err := l.vault.ReadNote(n.path)
		if err != nil {
			continue
		}
		idx := strings.Index(strings.ToLower(note.RawContent), needle)
		if idx == -1 {
			continue
		}
		results = append(results, SearchResult{
			Path:    n.path,
			Title:   strings.TrimSuffix(filepath.Base(n.path), filepath.Ext(n.path)),
			Excerpt: excerpt(note.RawContent, idx, len(query)),
			Line:    strings.Count(note.RawContent[:idx], "\n") + 1,
			URI:     uri.ForNote(l.vault.Root(), n.path),
		})
	}
	return results, nil
}

func (l *Local) backlinks(path string) ([]Backlink, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	g, err := l.snapshot()
	if err != nil {
		return nil, err
	}

	name := noteName(path)
	links := []Backlink{}
	for _, n := range g.notes {
		if n.path == path {
			continue
		}
		for _, target := range n.links {
			if target == name {
				links = append(links, Backlink{
					Path: n.path,
					URI:  uri.ForNote(l.vault.Root(), n.path),
				})
				break
			}
		}
	}
	return links, nil
}

func (l *Local) related(path string) ([]Related, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	g, err := l.snapshot()
	if err != nil {
		return nil, err
	}

	name := noteName(path)
	var source *noteEntry
	for i := range g.notes {
		if g.notes[i].path == path {
			source = &g.notes[i]
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("note not found: %s", path)
	}

	byPath := make(map[string]*Related)
	add := func(p, relation string, shared []string) {
		if existing, ok := byPath[p]; ok {
			existing.Relation += "," + relation
			if len(shared) > 0 && len(existing.SharedTags) == 0 {
				existing.SharedTags = shared
			}
			return
		}
		byPath[p] = &Related{Path: p, Relation: relation, SharedTags: shared}
	}

	for _, n := range g.notes {
		if n.path == path {
			continue
		}
		for _, target := range n.links {
			if target == name {
				add(n.path, "backlink", nil)
				break
			}
		}
		for _, target := range source.links {
			if target == n.name {
				add(n.path, "outgoing", nil)
				break
			}
		}
		if shared := sharedTags(source.tags, n.tags); len(shared) > 0 {
			add(n.path, "shared-tags", shared)
		}
	}

	related := make([]Related, 0, len(byPath))
	for _, r := range byPath {
		related = append(related, *r)
	}
	sort.Slice(related, func(i, j int) bool { return related[i].Path < related[j].Path })
	return related, nil
}

func (l *Local) tagCounts() ([]TagCount, error) {
	g, err := l.snapshot()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, n := range g.notes {
		for _, tag := range n.tags {
			counts[tag]++
		}
	}
	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

func (l *Local) stats() (Stats, error) {
	g, err := l.snapshot()
	if err != nil {
		return Stats{}, err
	}

	linked := make(map[string]bool)
	tagSet := make(map[string]bool)
	s := Stats{Notes: len(g.notes)}
	for _, n := range g.notes {
		s.Links += len(n.links)
		for _, tag := range n.tags {
			tagSet[tag] = true
		}
		for _, target := range n.links {
			if path, ok := g.byName[target]; ok {
				linked[path] = true
				linked[n.path] = true
			} else {
				s.BrokenLinks++
			}
		}
	}
	s.Tags = len(tagSet)
	for _, n := range g.notes {
		if !linked[n.path] {
			s.Orphans++
		}
	}
	return s, nil
}

func (l *Local) health() (Health, error) {
	s, err := l.stats()
	if err != nil {
		return Health{}, err
	}

	h := Health{BrokenLinks: s.BrokenLinks}
	if s.Notes > 0 {
		h.OrphanRatio = float64(s.Orphans) / float64(s.Notes)
	}
	switch {
	case s.BrokenLinks == 0 && h.OrphanRatio <= 0.25:
		h.Status = "healthy"
	case s.BrokenLinks <= 5 && h.OrphanRatio <= 0.5:
		h.Status = "fair"
	default:
		h.Status = "poor"
	}
	return h, nil
}

func noteName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func excerpt(content string, idx, matchLen int) string {
	start := max(idx-40, 0)
	end := min(idx+matchLen+40, len(content))
	out := strings.TrimSpace(content[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}

func extractLinks(content string) []string {
	seen := make(map[string]bool)
	var links []string
	for _, m := range linkPattern.FindAllStringSubmatch(content, -1) {
		target := strings.ToLower(strings.TrimSpace(m[1]))
		if target != "" && !seen[target] {
			seen[target] = true
			links = append(links, target)
		}
	}
	return links
}

func extractTags(fm map[string]any, content string) []string {
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			seen[tag] = true
		}
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, tag := range v {
			if s, ok := tag.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, tag := range v {
			add(tag)
		}
	case string:
		add(v)
	}

	for _, m := range inlineTagPattern.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func sharedTags(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	var shared []string
	for _, tag := range b {
		if set[tag] {
			shared = append(shared, tag)
		}
	}
	return shared
}

func stringArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
