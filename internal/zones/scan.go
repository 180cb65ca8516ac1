package zones

import (
	"regexp"
	"sort"
	"strings"
)

var (
	wikilinkPattern   = regexp.MustCompile(`\[\[.+?\]\]`)
	mdLinkPattern     = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	urlPattern        = regexp.MustCompile(`https?://[^\s]+`)
	hashtagPattern    = regexp.MustCompile(`#[\w-]+`)
	htmlTagPattern    = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)
	commentPattern    = regexp.MustCompile(`(?s)%%.+?%%`)
	blockMathPattern  = regexp.MustCompile(`(?s)\$\$.+?\$\$`)
	inlineMathPattern = regexp.MustCompile(`\$[^$\n]+?\$`)
	inlineCodePattern = regexp.MustCompile("`[^`\n]+`")
	headerPattern     = regexp.MustCompile(`(?m)^#{1,6} .*$`)
	calloutPattern    = regexp.MustCompile(`(?m)^> *\[!\w+\].*$`)
)

// Scan detects every protected zone in text and returns them sorted
// ascending by Start. It is a pure function of the input: no state is
// shared between calls, so it is safe to call concurrently.
//
// Each rule runs independently over the full text and overlapping matches
// from different rules are all retained. Malformed markup never fails the
// scan; it degrades to "zone not detected" (unclosed frontmatter, unclosed
// block math) or to a zone extending to the end of the document (unclosed
// code fence, which Obsidian renders as code to the end).
func Scan(text string) []Zone {
	var zs []Zone

	zs = append(zs, scanFrontmatter(text)...)

	code := scanCodeBlocks(text)
	zs = append(zs, code...)

	// Single-backtick spans count only outside fenced blocks.
	for _, m := range inlineCodePattern.FindAllStringIndex(text, -1) {
		if !containedIn(m[0], m[1], code) {
			zs = append(zs, Zone{m[0], m[1], InlineCode})
		}
	}

	links := matchAll(text, wikilinkPattern, Wikilink)
	links = append(links, matchAll(text, mdLinkPattern, MarkdownLink)...)
	zs = append(zs, links...)

	// Bare URLs inside an existing link span are already covered by it.
	for _, m := range urlPattern.FindAllStringIndex(text, -1) {
		if !containedIn(m[0], m[1], links) {
			zs = append(zs, Zone{m[0], m[1], URL})
		}
	}

	zs = append(zs, matchAll(text, htmlTagPattern, HTMLTag)...)
	zs = append(zs, matchAll(text, commentPattern, Comment)...)

	blockMath := matchAll(text, blockMathPattern, Math)
	zs = append(zs, blockMath...)
	for _, m := range inlineMathPattern.FindAllStringIndex(text, -1) {
		if !containedIn(m[0], m[1], blockMath) {
			zs = append(zs, Zone{m[0], m[1], Math})
		}
	}

	headers := matchAll(text, headerPattern, Header)
	zs = append(zs, headers...)
	zs = append(zs, scanCallouts(text)...)

	// Hashtags last: a # inside a header, URL fragment, code span or any
	// other zone is part of that construct, not a standalone tag.
	for _, m := range hashtagPattern.FindAllStringIndex(text, -1) {
		if !containedIn(m[0], m[1], zs) {
			zs = append(zs, Zone{m[0], m[1], Hashtag})
		}
	}

	sort.SliceStable(zs, func(i, j int) bool {
		if zs[i].Start != zs[j].Start {
			return zs[i].Start < zs[j].Start
		}
		return zs[i].End < zs[j].End
	})
	return zs
}

func matchAll(text string, re *regexp.Regexp, t ZoneType) []Zone {
	var zs []Zone
	for _, m := range re.FindAllStringIndex(text, -1) {
		zs = append(zs, Zone{m[0], m[1], t})
	}
	return zs
}

// containedIn reports whether [start, end) lies entirely inside one of zs.
func containedIn(start, end int, zs []Zone) bool {
	for _, z := range zs {
		if z.Start <= start && end <= z.End {
			return true
		}
	}
	return false
}

// scanFrontmatter matches a YAML frontmatter block: "---" alone on the
// first line, closed by a later line that is exactly "---" up to trailing
// whitespace. The zone runs from offset 0 through the closing delimiter
// line including its newline. A single-line document or an unclosed block
// produces no zone.
func scanFrontmatter(text string) []Zone {
	if !strings.HasPrefix(text, "---") {
		return nil
	}
	nl := strings.IndexByte(text, '\n')
	if nl == -1 {
		return nil
	}
	if strings.TrimRight(text[3:nl], "\r") != "" {
		return nil
	}

	pos := nl + 1
	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		var line string
		next := len(text)
		if lineEnd >= 0 {
			line = text[pos : pos+lineEnd]
			next = pos + lineEnd + 1
		} else {
			line = text[pos:]
		}
		if strings.TrimRight(line, " \t\r") == "---" {
			return []Zone{{0, next, Frontmatter}}
		}
		pos = next
	}
	return nil
}

// scanCodeBlocks matches fenced regions in document order, fence markers
// and language tag included. An unclosed fence extends to end of document.
func scanCodeBlocks(text string) []Zone {
	var zs []Zone
	pos := 0
	for {
		open := strings.Index(text[pos:], "```")
		if open == -1 {
			return zs
		}
		start := pos + open
		rest := start + 3
		closing := strings.Index(text[rest:], "```")
		if closing == -1 {
			return append(zs, Zone{start, len(text), CodeBlock})
		}
		end := rest + closing + 3
		zs = append(zs, Zone{start, end, CodeBlock})
		pos = end
	}
}

// scanCallouts matches a "> [!type]" line together with the contiguous
// blockquote lines that continue it. The zone ends at the last such line,
// newline excluded.
func scanCallouts(text string) []Zone {
	var zs []Zone
	for _, m := range calloutPattern.FindAllStringIndex(text, -1) {
		end := m[1]
		for end < len(text) {
			lineStart := end + 1 // skip the newline
			if lineStart >= len(text) || !strings.HasPrefix(text[lineStart:], ">") {
				break
			}
			lineEnd := strings.IndexByte(text[lineStart:], '\n')
			if lineEnd == -1 {
				end = len(text)
			} else {
				end = lineStart + lineEnd
			}
		}
		zs = append(zs, Zone{m[0], end, Callout})
	}
	return zs
}
