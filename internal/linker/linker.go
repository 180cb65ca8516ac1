// Package linker turns plain mentions of other notes into wikilinks,
// refusing to touch any protected zone of the note text.
package linker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/taigrr/vaultlink/internal/vault"
	"github.com/taigrr/vaultlink/internal/zones"
)

// Suggestion is one candidate edit: the text at [Start, End) mentions
// Target and can become a wikilink.
type Suggestion struct {
	Term   string `json:"term"`
	Target string `json:"target"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Result reports what an insertion pass did.
type Result struct {
	Content  string       `json:"content"`
	Inserted []Suggestion `json:"inserted"`
	Skipped  int          `json:"skipped"` // candidates rejected by protected zones
}

// BuildTargets maps lowercased note names and frontmatter aliases to the
// note name they should link to. The note at excludePath is left out so a
// note never links to itself.
func BuildTargets(v *vault.Vault, excludePath string) (map[string]string, error) {
	paths, err := v.Notes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	targets := make(map[string]string)
	for _, path := range paths {
		if path == excludePath {
			continue
		}
		name := strings.TrimSuffix(path[strings.LastIndex(path, "/")+1:], ".md")
		targets[strings.ToLower(name)] = name

		note, err := v.ReadNote(path)
		if err != nil {
			continue
		}
		for _, alias := range note.Aliases() {
			if alias = strings.TrimSpace(alias); alias != "" {
				targets[strings.ToLower(alias)] = name
			}
		}
	}
	return targets, nil
}

// Suggest finds, for each target term, the first whole-word mention in
// text that does not overlap a protected zone. Longer terms claim their
// spans first so "machine learning" beats "machine". Suggestions are
// returned sorted by Start and never overlap each other.
func Suggest(text string, targets map[string]string) []Suggestion {
	zs := zones.Scan(text)

	terms := make([]string, 0, len(targets))
	for term := range targets {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	var (
		sugs    []Suggestion
		claimed []zones.Zone
	)
	for _, term := range terms {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			continue
		}
		for _, m := range re.FindAllStringIndex(text, -1) {
			if zones.RangeOverlaps(m[0], m[1], zs) || zones.RangeOverlaps(m[0], m[1], claimed) {
				continue
			}
			sugs = append(sugs, Suggestion{
				Term:   text[m[0]:m[1]],
				Target: targets[term],
				Start:  m[0],
				End:    m[1],
			})
			claimed = append(claimed, zones.Zone{Start: m[0], End: m[1]})
			break // first unprotected mention only
		}
	}

	sort.Slice(sugs, func(i, j int) bool { return sugs[i].Start < sugs[j].Start })
	return sugs
}

// Apply rewrites text with the given suggestions as wikilinks. Edits are
// applied back to front so earlier offsets stay valid. A term that equals
// its target keeps the bare [[Target]] form; otherwise the mention is
// preserved as the alias.
func Apply(text string, sugs []Suggestion) string {
	ordered := append([]Suggestion(nil), sugs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	for _, s := range ordered {
		if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
			continue
		}
		var link string
		if strings.EqualFold(s.Term, s.Target) {
			link = "[[" + s.Target + "]]"
		} else {
			link = "[[" + s.Target + "|" + s.Term + "]]"
		}
		text = text[:s.Start] + link + text[s.End:]
	}
	return text
}

// InsertLinks runs a full pass: scan, suggest and apply. Skipped counts
// target terms present in the text whose every mention sat in a protected
// zone.
func InsertLinks(text string, targets map[string]string) Result {
	sugs := Suggest(text, targets)

	inserted := make(map[string]bool, len(sugs))
	for _, s := range sugs {
		inserted[strings.ToLower(s.Term)] = true
	}
	skipped := 0
	lower := strings.ToLower(text)
	for term := range targets {
		if !inserted[term] && strings.Contains(lower, term) {
			skipped++
		}
	}

	return Result{
		Content:  Apply(text, sugs),
		Inserted: sugs,
		Skipped:  skipped,
	}
}
