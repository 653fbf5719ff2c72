package profile

import (
	"strings"
	"time"
)

// Onboarding answer keys. Each derivation rule reads exactly one answer
// field and writes exactly one profile field, so the rules never conflict.
const (
	AnswerReadingStyle  = "reading_style"
	AnswerComplexTopics = "complex_topics"
	AnswerLearning      = "learning_preference"
	AnswerDistraction   = "distraction"
)

// Keyword sets for the derivation rules. Matching is case-insensitive
// substring presence.
var (
	shortReadingPhrases = []string{"shorter", "2-3 sentences", "small chunks", "bite-sized"}
	basicVocabPhrases   = []string{"simple", "basic", "plain language", "everyday words"}
	analogyPhrases      = []string{"analog", "example", "compare", "metaphor"}

	// Two-tier distraction language: a stronger phrase set escalates to high
	// sensitivity; a weaker set enables the filter at medium.
	highDistractionPhrases = []string{"very distracted", "extremely distracted", "cannot focus", "can't focus", "overwhelm"}
	someDistractionPhrases = []string{"distract", "hard to focus", "lose my place", "busy pages"}
)

// Derive produces a complete, schema-valid cognitive profile from free-text
// onboarding answers using keyword heuristics. It is the deterministic
// backstop for when the generative-model path is unavailable: even empty
// answers yield the default profile. Rules are applied in a fixed order and
// each rule only writes the field it governs.
func Derive(answers map[string]string) *Profile {
	p := Default()

	if containsAny(answers[AnswerReadingStyle], shortReadingPhrases) {
		p.Text.Chunking.MaxLength = 3
	}
	if containsAny(answers[AnswerComplexTopics], basicVocabPhrases) {
		p.Text.Vocabulary.SimplificationLevel = LevelBasic
	}
	if containsAny(answers[AnswerLearning], analogyPhrases) {
		p.Simplification.UseAnalogies = true
	}

	distraction := answers[AnswerDistraction]
	switch {
	case containsAny(distraction, highDistractionPhrases):
		p.Visuals.DistractionFilter.Enabled = true
		p.Visuals.DistractionFilter.Sensitivity = SensitivityHigh
	case containsAny(distraction, someDistractionPhrases):
		p.Visuals.DistractionFilter.Enabled = true
		p.Visuals.DistractionFilter.Sensitivity = SensitivityMedium
	}

	now := time.Now().UTC()
	p.Metadata = Metadata{
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
		GeneratedBy: GeneratedByHeuristic,
	}
	return p
}

func containsAny(answer string, phrases []string) bool {
	if answer == "" {
		return false
	}
	lower := strings.ToLower(answer)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
