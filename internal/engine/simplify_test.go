package engine

import (
	"strings"
	"testing"

	"github.com/attuneweb/attune/internal/profile"
)

func TestSimplify_ReplacesWholeWords(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Simplify("The utilization of smartphones is ubiquitous; their proliferation continues.", profile.LevelIntermediate)
	if !strings.Contains(res.Content, "widespread") {
		t.Errorf("content = %q, want ubiquitous replaced with widespread", res.Content)
	}
	if !strings.Contains(res.Content, "rapid growth") {
		t.Errorf("content = %q, want proliferation replaced with rapid growth", res.Content)
	}
	// "utilization" is not "utilize"; whole-word matching must leave it alone.
	if !strings.Contains(res.Content, "utilization") {
		t.Errorf("content = %q, utilization should be untouched", res.Content)
	}
	if len(res.Replacements) != 2 {
		t.Errorf("replacements = %v, want 2 entries", res.Replacements)
	}
}

func TestSimplify_WordBoundary(t *testing.T) {
	lex := DefaultLexicon()

	// "ubiquitously" contains "ubiquitous" but is a different word.
	res := lex.Simplify("Smartphones appear ubiquitously.", profile.LevelBasic)
	if res.Content != "Smartphones appear ubiquitously." {
		t.Errorf("content = %q, derived forms must not match", res.Content)
	}
	if len(res.Replacements) != 0 {
		t.Errorf("replacements = %v, want none", res.Replacements)
	}
}

func TestSimplify_CaseInsensitive(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Simplify("Ubiquitous devices. The UBIQUITOUS network.", profile.LevelBasic)
	if strings.Contains(strings.ToLower(res.Content), "ubiquitous") {
		t.Errorf("content = %q, all casings should be replaced", res.Content)
	}
	// Replacement text is inserted as written in the table.
	if !strings.Contains(res.Content, "everywhere devices") {
		t.Errorf("content = %q, replacement keeps table casing", res.Content)
	}
	// One log entry per distinct term, not per occurrence.
	if len(res.Replacements) != 1 {
		t.Errorf("replacements = %v, want 1 entry for 2 occurrences", res.Replacements)
	}
}

func TestSimplify_TiersDiffer(t *testing.T) {
	lex := DefaultLexicon()

	basic := lex.Simplify("The approach is ubiquitous.", profile.LevelBasic)
	inter := lex.Simplify("The approach is ubiquitous.", profile.LevelIntermediate)
	if !strings.Contains(basic.Content, "everywhere") {
		t.Errorf("basic = %q", basic.Content)
	}
	if !strings.Contains(inter.Content, "widespread") {
		t.Errorf("intermediate = %q", inter.Content)
	}
}

func TestSimplify_LevelNonePassthrough(t *testing.T) {
	lex := DefaultLexicon()

	in := "The paradigm is ubiquitous."
	res := lex.Simplify(in, profile.LevelNone)
	if res.Content != in {
		t.Errorf("content = %q, want unchanged", res.Content)
	}
	if res.Replacements == nil || len(res.Replacements) != 0 {
		t.Errorf("replacements = %#v, want empty non-nil slice", res.Replacements)
	}
}

func TestSimplify_LogFormat(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Simplify("A new paradigm.", profile.LevelIntermediate)
	if len(res.Replacements) != 1 {
		t.Fatalf("replacements = %v", res.Replacements)
	}
	want := `"paradigm" → "model"`
	if res.Replacements[0] != want {
		t.Errorf("log entry = %q, want %q", res.Replacements[0], want)
	}
}

func TestSimplify_DeterministicOrder(t *testing.T) {
	lex := DefaultLexicon()
	in := "We utilize numerous methods to facilitate and demonstrate results."

	first := lex.Simplify(in, profile.LevelBasic)
	for i := 0; i < 10; i++ {
		again := lex.Simplify(in, profile.LevelBasic)
		if again.Content != first.Content {
			t.Fatalf("run %d content differs: %q vs %q", i, again.Content, first.Content)
		}
		if strings.Join(again.Replacements, "|") != strings.Join(first.Replacements, "|") {
			t.Fatalf("run %d log order differs: %v vs %v", i, again.Replacements, first.Replacements)
		}
	}
	// Sorted by term: demonstrate before facilitate before numerous before utilize.
	if !sortedAsc(first.Replacements) {
		t.Errorf("log not in lexicographic term order: %v", first.Replacements)
	}
}

func sortedAsc(entries []string) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i-1] > entries[i] {
			return false
		}
	}
	return true
}
