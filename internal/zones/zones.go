// Package zones identifies spans of markdown text that automated link
// insertion must never rewrite: frontmatter, code, existing links, URLs,
// math, HTML, comments, headers, and callouts.
package zones

// ZoneType classifies a protected span. The scanner assigns no precedence
// among types; each consumer decides how to react to a given type.
type ZoneType string

// Recognized zone types.
const (
	Frontmatter  ZoneType = "frontmatter"
	CodeBlock    ZoneType = "code_block"
	InlineCode   ZoneType = "inline_code"
	Wikilink     ZoneType = "wikilink"
	MarkdownLink ZoneType = "markdown_link"
	URL          ZoneType = "url"
	Hashtag      ZoneType = "hashtag"
	HTMLTag      ZoneType = "html_tag"
	Comment      ZoneType = "comment"
	Math         ZoneType = "math"
	Header       ZoneType = "header"
	Callout      ZoneType = "callout"
)

// Zone is a half-open byte range [Start, End) within a scanned document.
// Zones are immutable for a given document snapshot; any edit requires a
// fresh Scan. Zones of different types may overlap (a URL inside inline
// code produces both), so consumers must use the containment and overlap
// queries rather than assuming sorted disjoint intervals.
type Zone struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Type  ZoneType `json:"type"`
}

// InProtectedZone reports whether pos falls inside any zone. Start is
// inclusive and End exclusive, so a position exactly at a zone's End is
// not protected.
func InProtectedZone(pos int, zs []Zone) bool {
	for _, z := range zs {
		if z.Start <= pos && pos < z.End {
			return true
		}
	}
	return false
}

// RangeOverlaps reports whether the half-open range [start, end) intersects
// any zone. A range that exactly abuts a zone boundary does not overlap.
func RangeOverlaps(start, end int, zs []Zone) bool {
	for _, z := range zs {
		if start < z.End && end > z.Start {
			return true
		}
	}
	return false
}

// OfType returns the subset of zs with the given type, preserving order.
func OfType(zs []Zone, t ZoneType) []Zone {
	var out []Zone
	for _, z := range zs {
		if z.Type == t {
			out = append(out, z)
		}
	}
	return out
}
