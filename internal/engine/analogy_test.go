package engine

import (
	"strings"
	"testing"
)

func TestAnnotate_FirstOccurrenceOnly(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Annotate("An algorithm sorts data. The algorithm runs fast.")
	if n := strings.Count(res.Content, "[analogy:"); n != 1 {
		t.Errorf("markers = %d, want exactly 1: %q", n, res.Content)
	}
	if !strings.HasPrefix(res.Content, "An algorithm [analogy: like a recipe") {
		t.Errorf("marker not after first occurrence: %q", res.Content)
	}
	if len(res.Applied) != 1 || res.Applied[0] != "algorithm" {
		t.Errorf("applied = %v", res.Applied)
	}
}

func TestAnnotate_PhraseConcept(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Annotate("Training a neural network takes time.")
	if !strings.Contains(res.Content, "neural network [analogy: like a web of brain cells") {
		t.Errorf("content = %q", res.Content)
	}
}

func TestAnnotate_NoConcepts(t *testing.T) {
	lex := DefaultLexicon()

	in := "Nothing abstract here."
	res := lex.Annotate(in)
	if res.Content != in {
		t.Errorf("content = %q, want unchanged", res.Content)
	}
	if res.Applied == nil || len(res.Applied) != 0 {
		t.Errorf("applied = %#v, want empty non-nil slice", res.Applied)
	}
}

func TestAnnotate_MultipleConcepts(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Annotate("Gravity shapes every ecosystem.")
	if len(res.Applied) != 2 {
		t.Fatalf("applied = %v, want 2 concepts", res.Applied)
	}
	if n := strings.Count(res.Content, "[analogy:"); n != 2 {
		t.Errorf("markers = %d: %q", n, res.Content)
	}
}

func TestAnnotate_CaseInsensitive(t *testing.T) {
	lex := DefaultLexicon()

	res := lex.Annotate("BANDWIDTH matters.")
	if len(res.Applied) != 1 {
		t.Errorf("applied = %v, want bandwidth matched case-insensitively", res.Applied)
	}
	// The original phrase casing is preserved.
	if !strings.HasPrefix(res.Content, "BANDWIDTH [analogy:") {
		t.Errorf("content = %q", res.Content)
	}
}
