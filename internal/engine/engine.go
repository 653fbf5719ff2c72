package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/attuneweb/attune/internal/profile"
)

// Engine orchestrates the transformation passes. It holds no per-call state;
// the only mutable field is the current lexicon, swapped atomically on
// override reloads, so calls are safe to run concurrently.
type Engine struct {
	lex atomic.Pointer[Lexicon]
}

// New creates an engine with the built-in lexicon.
func New() *Engine {
	return NewWithLexicon(DefaultLexicon())
}

// NewWithLexicon creates an engine with a custom lexicon.
func NewWithLexicon(l *Lexicon) *Engine {
	e := &Engine{}
	e.lex.Store(l)
	return e
}

// Lexicon returns the engine's current lexicon.
func (e *Engine) Lexicon() *Lexicon {
	return e.lex.Load()
}

// SetLexicon swaps the lexicon. In-flight calls keep the lexicon they
// started with.
func (e *Engine) SetLexicon(l *Lexicon) {
	e.lex.Store(l)
}

// TextResult is the outcome of a text transformation. Log is append-only in
// pass order (vocabulary → chunking → analogies) and purely observational.
type TextResult struct {
	Content  string         `json:"transformedContent"`
	Log      []string       `json:"transformationLog"`
	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata summarizes what each pass did.
type ResultMetadata struct {
	Level            string `json:"simplificationLevel"`
	TermsReplaced    int    `json:"termsReplaced"`
	ChunksCreated    int    `json:"chunksCreated"`
	AnalogiesApplied int    `json:"analogiesApplied"`
}

// TransformText runs the text passes gated by the resolved settings. On any
// internal failure the returned result carries the original content
// unchanged alongside the error; partially-transformed content is never
// returned.
func (e *Engine) TransformText(content string, s profile.Settings) (TextResult, error) {
	lex := e.Lexicon()
	res := TextResult{Content: content, Log: []string{}, Metadata: ResultMetadata{Level: s.Level}}
	working := content

	if s.Level != profile.LevelNone {
		sr := lex.Simplify(working, s.Level)
		working = sr.Content
		res.Log = append(res.Log, sr.Replacements...)
		res.Metadata.TermsReplaced = len(sr.Replacements)
	}

	if s.ChunkingEnabled {
		cr, err := ChunkParagraphs(SplitParagraphs(working), s.MaxSentences)
		if err != nil {
			return TextResult{Content: content, Log: []string{}}, err
		}
		if cr.ChunksCreated > 0 {
			working = strings.Join(cr.Paragraphs, "\n\n")
			res.Log = append(res.Log, fmt.Sprintf("split %d long paragraph(s) into groups of at most %d sentences",
				cr.ChunksCreated, s.MaxSentences))
			res.Metadata.ChunksCreated = cr.ChunksCreated
		}
	}

	if s.UseAnalogies {
		ar := lex.Annotate(working)
		working = ar.Content
		for _, concept := range ar.Applied {
			res.Log = append(res.Log, fmt.Sprintf("analogy added for %q", concept))
		}
		res.Metadata.AnalogiesApplied = len(ar.Applied)
	}

	res.Content = working
	return res, nil
}
