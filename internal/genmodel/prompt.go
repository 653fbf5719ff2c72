package genmodel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/attuneweb/attune/internal/profile"
)

// InstructionPrefix renders the deterministic, profile-derived instruction
// prefix sent ahead of every rewrite request. The same Settings value always
// produces the same prefix.
func InstructionPrefix(s profile.Settings) string {
	var b strings.Builder
	b.WriteString("Rewrite the following text for accessibility.")

	switch s.Level {
	case profile.LevelNone:
		b.WriteString(" Keep the original vocabulary.")
	default:
		fmt.Fprintf(&b, " Use %s-level vocabulary and replace complex terms with simpler ones.", s.Level)
	}

	if s.ChunkingEnabled {
		fmt.Fprintf(&b, " Keep paragraphs to at most %d sentences each.", s.MaxSentences)
	}

	if s.UseAnalogies {
		b.WriteString(" Add a short everyday analogy after each difficult concept.")
	} else {
		b.WriteString(" Do not add analogies.")
	}

	b.WriteString(" Preserve the meaning and all factual content.")
	return b.String()
}

const profileSystemPrompt = "You translate onboarding answers into a cognitive accessibility profile. " +
	"Return ONLY a JSON object, no explanations, no markdown, no code blocks."

// profilePrompt embeds the onboarding answers (in sorted key order, for
// deterministic prompts) and the exact profile schema the model must return.
func profilePrompt(answers map[string]string) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Derive a cognitive profile from these onboarding answers:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, answers[k])
	}
	b.WriteString(`
Return a JSON object with exactly this shape:
{
  "text": {
    "chunking": {"strategy": "sentence_limit" or "none", "maxLength": <positive integer, required for sentence_limit>},
    "vocabulary": {"simplificationLevel": "none"|"basic"|"intermediate"|"advanced"}
  },
  "simplification": {
    "useAnalogies": true|false,
    "summarization": {"defaultState": "collapsed"|"expanded", "summaryLength": <integer 5-75>}
  },
  "visuals": {
    "distractionFilter": {"enabled": true|false, "sensitivity": "low"|"medium"|"high"}
  },
  "preferences": {"fontSize": "", "lineHeight": "", "colorScheme": ""}
}`)
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence from a model
// response, which some models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
