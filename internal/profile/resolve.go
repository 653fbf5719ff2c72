package profile

import (
	"fmt"

	"github.com/attuneweb/attune/internal/apperr"
)

// Settings is the fully-populated configuration the transformation passes
// consume. Resolving once at the entry of each call keeps missing-field
// behavior in a single place instead of scattered defaults at every site.
type Settings struct {
	ChunkingEnabled bool
	MaxSentences    int
	Level           string
	UseAnalogies    bool
	FilterEnabled   bool
	Sensitivity     string
}

// Resolve validates p and produces the Settings consumed by all downstream
// stages. A nil profile resolves to the default profile. The supplied profile
// is never mutated.
func Resolve(p *Profile) (Settings, error) {
	if p == nil {
		p = Default()
	}

	s := Settings{
		Level:        p.Text.Vocabulary.SimplificationLevel,
		UseAnalogies: p.Simplification.UseAnalogies,
		Sensitivity:  p.Visuals.DistractionFilter.Sensitivity,
	}

	if s.Level == "" {
		s.Level = LevelNone
	}
	switch s.Level {
	case LevelNone, LevelBasic, LevelIntermediate, LevelAdvanced:
	default:
		return Settings{}, fmt.Errorf("%w: unknown simplification level %q", apperr.ErrInvalidConfiguration, s.Level)
	}

	switch p.Text.Chunking.Strategy {
	case ChunkingSentenceLimit:
		if p.Text.Chunking.MaxLength < 1 {
			return Settings{}, fmt.Errorf("%w: chunking maxLength must be positive when strategy is %s",
				apperr.ErrInvalidConfiguration, ChunkingSentenceLimit)
		}
		s.ChunkingEnabled = true
		s.MaxSentences = p.Text.Chunking.MaxLength
	case ChunkingNone, "":
		// Chunking disabled; MaxLength intentionally not read.
	default:
		return Settings{}, fmt.Errorf("%w: unknown chunking strategy %q",
			apperr.ErrInvalidConfiguration, p.Text.Chunking.Strategy)
	}

	if p.Visuals.DistractionFilter.Enabled {
		s.FilterEnabled = true
		switch s.Sensitivity {
		case SensitivityLow, SensitivityMedium, SensitivityHigh:
		default:
			return Settings{}, fmt.Errorf("%w: unknown sensitivity %q", apperr.ErrInvalidConfiguration, s.Sensitivity)
		}
	} else if s.Sensitivity == "" {
		s.Sensitivity = SensitivityMedium
	}

	return s, nil
}
