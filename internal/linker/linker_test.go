package linker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/vaultlink/internal/vault"
)

func TestSuggest(t *testing.T) {
	targets := map[string]string{
		"alpha":        "Alpha",
		"beta notes":   "Beta Notes",
		"graph theory": "Graph Theory",
		"graph":        "Graph",
	}

	t.Run("finds first whole-word mention", func(t *testing.T) {
		text := "We discussed alpha today. Later alpha came up again."
		sugs := Suggest(text, map[string]string{"alpha": "Alpha"})
		if len(sugs) != 1 {
			t.Fatalf("Suggest() returned %d suggestions, want 1", len(sugs))
		}
		if sugs[0].Start != strings.Index(text, "alpha") {
			t.Errorf("suggestion at %d, want first mention", sugs[0].Start)
		}
		if sugs[0].Target != "Alpha" {
			t.Errorf("Target = %q, want Alpha", sugs[0].Target)
		}
	})

	t.Run("case-insensitive with original casing preserved", func(t *testing.T) {
		sugs := Suggest("ALPHA is loud", map[string]string{"alpha": "Alpha"})
		if len(sugs) != 1 {
			t.Fatalf("Suggest() returned %d suggestions, want 1", len(sugs))
		}
		if sugs[0].Term != "ALPHA" {
			t.Errorf("Term = %q, want ALPHA", sugs[0].Term)
		}
	})

	t.Run("no partial-word matches", func(t *testing.T) {
		if sugs := Suggest("alphabet soup", map[string]string{"alpha": "Alpha"}); len(sugs) != 0 {
			t.Errorf("Suggest() matched inside a word: %v", sugs)
		}
	})

	t.Run("longer terms win overlapping spans", func(t *testing.T) {
		sugs := Suggest("studying graph theory now", targets)
		if len(sugs) != 1 {
			t.Fatalf("Suggest() returned %d suggestions, want 1", len(sugs))
		}
		if sugs[0].Target != "Graph Theory" {
			t.Errorf("Target = %q, want Graph Theory", sugs[0].Target)
		}
	})

	t.Run("protected zones are skipped", func(t *testing.T) {
		text := "# alpha heading\n`alpha in code` and [[alpha]] linked, then alpha in prose"
		sugs := Suggest(text, map[string]string{"alpha": "Alpha"})
		if len(sugs) != 1 {
			t.Fatalf("Suggest() returned %d suggestions, want 1", len(sugs))
		}
		if got := text[sugs[0].Start:sugs[0].End]; got != "alpha" || sugs[0].Start < strings.Index(text, "prose")-9 {
			t.Errorf("suggestion at %d (%q), want the prose mention", sugs[0].Start, got)
		}
	})

	t.Run("frontmatter is never touched", func(t *testing.T) {
		text := "---\ntitle: alpha\n---\nbody without mentions"
		if sugs := Suggest(text, map[string]string{"alpha": "Alpha"}); len(sugs) != 0 {
			t.Errorf("Suggest() entered frontmatter: %v", sugs)
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("bare link when term equals target", func(t *testing.T) {
		text := "see alpha here"
		out := Apply(text, []Suggestion{{Term: "alpha", Target: "Alpha", Start: 4, End: 9}})
		if out != "see [[Alpha]] here" {
			t.Errorf("Apply() = %q", out)
		}
	})

	t.Run("alias link preserves mention text", func(t *testing.T) {
		text := "the proto doc explains it"
		out := Apply(text, []Suggestion{{Term: "proto doc", Target: "Protocol", Start: 4, End: 13}})
		if out != "the [[Protocol|proto doc]] explains it" {
			t.Errorf("Apply() = %q", out)
		}
	})

	t.Run("multiple edits keep offsets valid", func(t *testing.T) {
		text := "alpha and beta"
		out := Apply(text, []Suggestion{
			{Term: "alpha", Target: "Alpha", Start: 0, End: 5},
			{Term: "beta", Target: "Beta", Start: 10, End: 14},
		})
		if out != "[[Alpha]] and [[Beta]]" {
			t.Errorf("Apply() = %q", out)
		}
	})

	t.Run("out-of-range suggestion is ignored", func(t *testing.T) {
		if out := Apply("short", []Suggestion{{Term: "x", Target: "X", Start: 3, End: 99}}); out != "short" {
			t.Errorf("Apply() = %q, want input unchanged", out)
		}
	})
}

func TestInsertLinks(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		text := "# Notes\nalpha relates to beta. See `alpha` for code."
		res := InsertLinks(text, map[string]string{"alpha": "Alpha", "beta": "Beta"})
		if len(res.Inserted) != 2 {
			t.Fatalf("Inserted = %v, want 2 entries", res.Inserted)
		}
		if !strings.Contains(res.Content, "[[Alpha]] relates to [[Beta]]") {
			t.Errorf("Content = %q", res.Content)
		}
		if strings.Contains(res.Content, "`[[") {
			t.Errorf("Content rewrote inside inline code: %q", res.Content)
		}
	})

	t.Run("skipped counts zone-blocked terms", func(t *testing.T) {
		text := "only `gamma` appears in code"
		res := InsertLinks(text, map[string]string{"gamma": "Gamma"})
		if len(res.Inserted) != 0 {
			t.Errorf("Inserted = %v, want none", res.Inserted)
		}
		if res.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", res.Skipped)
		}
		if res.Content != text {
			t.Errorf("Content changed: %q", res.Content)
		}
	})
}

func TestBuildTargets(t *testing.T) {
	root := t.TempDir()
	v := vault.Open(root, nil)
	write := func(rel, content string) {
		t.Helper()
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("Alpha.md", "---\naliases: [first letter]\n---\ncontent")
	write("sub/Beta.md", "content")
	write("Current.md", "the note being linked")

	targets, err := BuildTargets(v, "Current.md")
	if err != nil {
		t.Fatalf("BuildTargets() error = %v", err)
	}

	if targets["alpha"] != "Alpha" {
		t.Errorf("targets[alpha] = %q, want Alpha", targets["alpha"])
	}
	if targets["first letter"] != "Alpha" {
		t.Errorf("targets[first letter] = %q, want Alpha (alias)", targets["first letter"])
	}
	if targets["beta"] != "Beta" {
		t.Errorf("targets[beta] = %q, want Beta", targets["beta"])
	}
	if _, ok := targets["current"]; ok {
		t.Error("targets includes the excluded note itself")
	}
}
