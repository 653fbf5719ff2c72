package engine

import "fmt"

// AnnotateResult is the output of the analogy pass.
type AnnotateResult struct {
	Content string
	Applied []string
}

// Annotate attaches an explanatory analogy to the first occurrence of each
// known concept in content. The analogy is appended inline immediately after
// the matched phrase as an auxiliary marker; the phrase itself is untouched.
// Later occurrences of the same concept are left alone, and one log entry is
// recorded per concept annotated. Concepts are scanned longest-phrase-first.
func (l *Lexicon) Annotate(content string) AnnotateResult {
	res := AnnotateResult{Content: content, Applied: []string{}}
	for _, a := range l.analogies {
		loc := a.re.FindStringIndex(res.Content)
		if loc == nil {
			continue
		}
		marker := fmt.Sprintf(" [analogy: %s]", a.Text)
		res.Content = res.Content[:loc[1]] + marker + res.Content[loc[1]:]
		res.Applied = append(res.Applied, a.Concept)
	}
	return res
}
