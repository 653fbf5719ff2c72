// Package profile defines the CognitiveProfile schema that drives every
// content transformation, plus validation, default resolution, and the
// heuristic derivation fallback.
package profile

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Chunking strategies.
const (
	ChunkingSentenceLimit = "sentence_limit"
	ChunkingNone          = "none"
)

// Vocabulary simplification levels. Each level selects a substitution tier;
// "none" disables the vocabulary pass entirely.
const (
	LevelNone         = "none"
	LevelBasic        = "basic"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Distraction-filter sensitivity tiers.
const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityHigh   = "high"
)

// Summarization default states.
const (
	SummaryCollapsed = "collapsed"
	SummaryExpanded  = "expanded"
)

// Profile provenance values recorded in Metadata.GeneratedBy.
const (
	GeneratedByModel     = "model"
	GeneratedByHeuristic = "heuristic"
	GeneratedByManual    = "manual"
)

// Profile is a user's cognitive profile: the structured accessibility
// preferences consumed by the transformation engine. It is treated as
// immutable input to every transformation call.
type Profile struct {
	Text           Text           `json:"text"`
	Simplification Simplification `json:"simplification"`
	Visuals        Visuals        `json:"visuals"`
	Preferences    Preferences    `json:"preferences"`
	Metadata       Metadata       `json:"metadata"`
}

// Text holds the text-transformation preferences.
type Text struct {
	Chunking   Chunking   `json:"chunking"`
	Vocabulary Vocabulary `json:"vocabulary"`
}

// Chunking controls paragraph re-splitting. MaxLength is the
// sentences-per-paragraph ceiling and is only meaningful when Strategy is
// "sentence_limit".
type Chunking struct {
	Strategy  string `json:"strategy"`
	MaxLength int    `json:"maxLength,omitempty"`
}

// Vocabulary selects the lexical substitution tier.
type Vocabulary struct {
	SimplificationLevel string `json:"simplificationLevel"`
}

// Simplification holds analogy and summarization preferences. Summarization
// is consumed by the presentation layer and carried through unchanged.
type Simplification struct {
	UseAnalogies  bool          `json:"useAnalogies"`
	Summarization Summarization `json:"summarization"`
}

// Summarization describes how summaries are presented. SummaryLength is a
// percentage of the original text, 5-75.
type Summarization struct {
	DefaultState  string `json:"defaultState"`
	SummaryLength int    `json:"summaryLength"`
}

// Visuals holds the distraction-filter settings.
type Visuals struct {
	DistractionFilter DistractionFilter `json:"distractionFilter"`
}

// DistractionFilter controls visibility reduction of non-essential page
// elements.
type DistractionFilter struct {
	Enabled     bool   `json:"enabled"`
	Sensitivity string `json:"sensitivity"`
}

// Preferences are display hints passed through to the presentation layer.
// The engine never reads them.
type Preferences struct {
	FontSize    string `json:"fontSize,omitempty"`
	LineHeight  string `json:"lineHeight,omitempty"`
	ColorScheme string `json:"colorScheme,omitempty"`
}

// Metadata records profile provenance. Not used in transformation logic.
type Metadata struct {
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	Version     int       `json:"version,omitempty"`
	GeneratedBy string    `json:"generatedBy,omitempty"`
}

// Default returns the baseline profile used when no onboarding signal
// overrides a field: short paragraphs, intermediate vocabulary, no analogies,
// distraction filter off at medium sensitivity.
func Default() *Profile {
	return &Profile{
		Text: Text{
			Chunking:   Chunking{Strategy: ChunkingSentenceLimit, MaxLength: 4},
			Vocabulary: Vocabulary{SimplificationLevel: LevelIntermediate},
		},
		Simplification: Simplification{
			UseAnalogies: false,
			Summarization: Summarization{
				DefaultState:  SummaryExpanded,
				SummaryLength: 30,
			},
		},
		Visuals: Visuals{
			DistractionFilter: DistractionFilter{
				Enabled:     false,
				Sensitivity: SensitivityMedium,
			},
		},
	}
}

// Validate checks the profile against the schema contract.
func (p *Profile) Validate() error {
	if err := p.Text.Chunking.Validate(); err != nil {
		return err
	}
	if err := p.Text.Vocabulary.Validate(); err != nil {
		return err
	}
	if err := p.Simplification.Summarization.Validate(); err != nil {
		return err
	}
	return p.Visuals.DistractionFilter.Validate()
}

// Validate validates the chunking preferences. MaxLength is required (and
// must be positive) only when the strategy is sentence_limit.
func (c *Chunking) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Strategy, validation.Required, validation.In(ChunkingSentenceLimit, ChunkingNone)),
		validation.Field(&c.MaxLength,
			validation.When(c.Strategy == ChunkingSentenceLimit, validation.Required, validation.Min(1)),
		),
	)
}

// Validate validates the vocabulary preferences.
func (v *Vocabulary) Validate() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.SimplificationLevel, validation.Required,
			validation.In(LevelNone, LevelBasic, LevelIntermediate, LevelAdvanced)),
	)
}

// Validate validates the summarization preferences.
func (s *Summarization) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DefaultState, validation.Required, validation.In(SummaryCollapsed, SummaryExpanded)),
		validation.Field(&s.SummaryLength, validation.Required, validation.Min(5), validation.Max(75)),
	)
}

// Validate validates the distraction-filter preferences.
func (d *DistractionFilter) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Sensitivity, validation.Required,
			validation.In(SensitivityLow, SensitivityMedium, SensitivityHigh)),
	)
}
