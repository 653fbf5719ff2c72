package engine

import (
	"regexp"
	"strings"
)

// sentencePattern matches a run of non-terminator characters followed by one
// or more terminal punctuation marks.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// paragraphSplit matches blank-line paragraph boundaries.
var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// SplitSentences splits text into an ordered sequence of sentences on
// terminal-punctuation boundaries. Text with no terminator is treated as a
// single sentence (the whole trimmed text).
func SplitSentences(text string) []string {
	matches := sentencePattern.FindAllString(text, -1)
	if matches == nil {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := strings.TrimSpace(m); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitParagraphs splits text into paragraph units on blank lines, dropping
// empty units.
func SplitParagraphs(text string) []string {
	parts := paragraphSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
