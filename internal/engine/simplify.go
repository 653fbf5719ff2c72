package engine

import (
	"fmt"

	"github.com/attuneweb/attune/internal/profile"
)

// SimplifyResult is the output of the vocabulary pass.
type SimplifyResult struct {
	Content      string
	Replacements []string
}

// Simplify applies the tier table for level to text: every whole-word,
// case-insensitive occurrence of a complex term is replaced. Replacement text
// is inserted exactly as written in the table (lowercase); the matched
// occurrence's casing is not preserved. One log entry is recorded per
// distinct term replaced, not per occurrence.
//
// The tier is applied in a single pass over the sorted table: replacement
// output is never rescanned, so one term's replacement can never trigger
// another entry. Level "none" (or an unknown level) passes the text through
// unchanged.
func (l *Lexicon) Simplify(text, level string) SimplifyResult {
	res := SimplifyResult{Content: text, Replacements: []string{}}
	if level == profile.LevelNone {
		return res
	}
	for _, sub := range l.Tier(level) {
		if !sub.re.MatchString(res.Content) {
			continue
		}
		res.Content = sub.re.ReplaceAllString(res.Content, sub.Replacement)
		res.Replacements = append(res.Replacements, fmt.Sprintf("%q → %q", sub.Term, sub.Replacement))
	}
	return res
}
