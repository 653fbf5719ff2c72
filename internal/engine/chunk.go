package engine

import (
	"fmt"
	"strings"

	"github.com/attuneweb/attune/internal/apperr"
)

// ChunkResult is the output of the paragraph-chunking pass.
type ChunkResult struct {
	Paragraphs    []string
	ChunksCreated int
}

// ChunkParagraphs re-splits every paragraph whose sentence count exceeds
// maxSentences into consecutive groups of at most maxSentences sentences,
// each re-joined with a single space. ChunksCreated counts paragraphs that
// were split, not the chunks produced. Paragraphs at or under the limit pass
// through untouched.
//
// The resolved-profile layer guarantees a positive limit, so a non-positive
// maxSentences is rejected as an InvalidConfiguration rather than clamped.
func ChunkParagraphs(paragraphs []string, maxSentences int) (ChunkResult, error) {
	if maxSentences <= 0 {
		return ChunkResult{}, fmt.Errorf("%w: maxSentences must be positive, got %d",
			apperr.ErrInvalidConfiguration, maxSentences)
	}

	res := ChunkResult{Paragraphs: make([]string, 0, len(paragraphs))}
	for _, para := range paragraphs {
		sentences := SplitSentences(para)
		if len(sentences) <= maxSentences {
			res.Paragraphs = append(res.Paragraphs, para)
			continue
		}
		for start := 0; start < len(sentences); start += maxSentences {
			end := start + maxSentences
			if end > len(sentences) {
				end = len(sentences)
			}
			res.Paragraphs = append(res.Paragraphs, strings.Join(sentences[start:end], " "))
		}
		res.ChunksCreated++
	}
	return res, nil
}
