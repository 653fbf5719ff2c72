// Package engine implements the deterministic content-transformation core:
// vocabulary simplification, paragraph chunking, analogy annotation, and
// visual distraction classification.
package engine

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/attuneweb/attune/internal/profile"
)

// Substitution is one complex→simple vocabulary pair with its precompiled
// whole-word, case-insensitive matcher.
type Substitution struct {
	Term        string
	Replacement string
	re          *regexp.Regexp
}

// Analogy attaches an explanatory comparison to a concept phrase.
type Analogy struct {
	Concept string
	Text    string
	re      *regexp.Regexp
}

// Lexicon holds the substitution tiers and the concept→analogy table.
// Construction sorts every tier lexicographically by term and the analogy
// list longest-concept-first, so iteration order (and therefore output) is
// deterministic regardless of source map ordering.
type Lexicon struct {
	tiers     map[string][]Substitution
	analogies []Analogy
}

// Overrides is the YAML shape of a lexicon override file. Entries are merged
// over the built-in tables; an empty replacement removes the built-in entry.
type Overrides struct {
	Tiers     map[string]map[string]string `yaml:"tiers"`
	Analogies map[string]string            `yaml:"analogies"`
}

// The built-in tier tables. The basic tier is the most aggressive; advanced
// only touches genuinely rare terms.
var builtinTiers = map[string]map[string]string{
	profile.LevelBasic: {
		"ubiquitous":    "everywhere",
		"proliferation": "spread",
		"utilize":       "use",
		"commence":      "start",
		"terminate":     "end",
		"demonstrate":   "show",
		"subsequently":  "later",
		"approximately": "about",
		"facilitate":    "help",
		"endeavor":      "try",
		"fundamental":   "basic",
		"consequently":  "so",
		"numerous":      "many",
		"sufficient":    "enough",
		"acquire":       "get",
	},
	profile.LevelIntermediate: {
		"ubiquitous":    "widespread",
		"proliferation": "rapid growth",
		"paradigm":      "model",
		"methodology":   "method",
		"exacerbate":    "worsen",
		"ameliorate":    "improve",
		"dichotomy":     "split",
		"juxtaposition": "contrast",
	},
	profile.LevelAdvanced: {
		"sesquipedalian": "long-winded",
		"perspicacious":  "sharp-eyed",
		"obfuscate":      "obscure",
	},
}

var builtinAnalogies = map[string]string{
	"algorithm":         "like a recipe the computer follows step by step",
	"photosynthesis":    "like a solar panel that turns sunlight into food",
	"neural network":    "like a web of brain cells passing messages to each other",
	"metabolism":        "like an engine burning fuel to keep the body running",
	"inflation":         "like the same money buying a smaller bag of groceries each year",
	"ecosystem":         "like a neighborhood where every resident depends on the others",
	"bandwidth":         "like the number of lanes on a highway",
	"immune system":     "like a security team patrolling the body for intruders",
	"gravity":           "like an invisible string pulling objects toward each other",
	"supply and demand": "like ticket prices rising when a concert sells out",
}

// DefaultLexicon builds the lexicon from the built-in tables.
func DefaultLexicon() *Lexicon {
	l, err := buildLexicon(builtinTiers, builtinAnalogies)
	if err != nil {
		// Built-in tables are compile-time constants; a bad pattern here is a
		// programming error.
		panic(err)
	}
	return l
}

// LoadOverrides reads a lexicon override file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: read lexicon overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("engine: parse lexicon overrides %s: %w", path, err)
	}
	return &o, nil
}

// Apply merges overrides over the built-in tables and returns a new lexicon.
// The receiver is not modified.
func (l *Lexicon) Apply(o *Overrides) (*Lexicon, error) {
	tiers := make(map[string]map[string]string, len(builtinTiers))
	for tier, table := range builtinTiers {
		merged := make(map[string]string, len(table))
		for term, repl := range table {
			merged[term] = repl
		}
		tiers[tier] = merged
	}
	if o != nil {
		for tier, table := range o.Tiers {
			if tiers[tier] == nil {
				tiers[tier] = make(map[string]string, len(table))
			}
			for term, repl := range table {
				if repl == "" {
					delete(tiers[tier], term)
					continue
				}
				tiers[tier][term] = repl
			}
		}
	}

	analogies := make(map[string]string, len(builtinAnalogies))
	for concept, text := range builtinAnalogies {
		analogies[concept] = text
	}
	if o != nil {
		for concept, text := range o.Analogies {
			if text == "" {
				delete(analogies, concept)
				continue
			}
			analogies[concept] = text
		}
	}

	return buildLexicon(tiers, analogies)
}

// Tier returns the substitutions for a level in deterministic order. Unknown
// levels yield an empty table.
func (l *Lexicon) Tier(level string) []Substitution {
	return l.tiers[level]
}

func buildLexicon(tiers map[string]map[string]string, analogies map[string]string) (*Lexicon, error) {
	out := &Lexicon{tiers: make(map[string][]Substitution, len(tiers))}

	for tier, table := range tiers {
		subs := make([]Substitution, 0, len(table))
		for term, repl := range table {
			re, err := wordPattern(term)
			if err != nil {
				return nil, fmt.Errorf("engine: tier %s term %q: %w", tier, term, err)
			}
			subs = append(subs, Substitution{Term: term, Replacement: repl, re: re})
		}
		sort.Slice(subs, func(i, j int) bool { return subs[i].Term < subs[j].Term })
		out.tiers[tier] = subs
	}

	out.analogies = make([]Analogy, 0, len(analogies))
	for concept, text := range analogies {
		re, err := wordPattern(concept)
		if err != nil {
			return nil, fmt.Errorf("engine: analogy concept %q: %w", concept, err)
		}
		out.analogies = append(out.analogies, Analogy{Concept: concept, Text: text, re: re})
	}
	// Longest concept first so overlapping phrases resolve to the longest
	// match; ties break lexicographically for determinism.
	sort.Slice(out.analogies, func(i, j int) bool {
		a, b := out.analogies[i].Concept, out.analogies[j].Concept
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return out, nil
}

// wordPattern compiles a case-insensitive whole-word matcher for term, which
// may be a multi-word phrase.
func wordPattern(term string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}
