package engine

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/attuneweb/attune/internal/apperr"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"ellipsis run", "Wait... done.", []string{"Wait...", "done."}},
		{"no terminator", "a fragment without punctuation", []string{"a fragment without punctuation"}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	in := "First para.\n\nSecond para.\n   \nThird para."
	got := SplitParagraphs(in)
	want := []string{"First para.", "Second para.", "Third para."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitParagraphs = %#v, want %#v", got, want)
	}
}

func TestChunkParagraphs_SplitsLongParagraph(t *testing.T) {
	para := "S1. S2. S3. S4. S5. S6. S7."
	res, err := ChunkParagraphs([]string{para}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"S1. S2. S3.", "S4. S5. S6.", "S7."}
	if !reflect.DeepEqual(res.Paragraphs, want) {
		t.Errorf("paragraphs = %#v, want %#v", res.Paragraphs, want)
	}
	// One paragraph was split, however many chunks came out.
	if res.ChunksCreated != 1 {
		t.Errorf("chunksCreated = %d, want 1", res.ChunksCreated)
	}
}

func TestChunkParagraphs_ShortParagraphUntouched(t *testing.T) {
	para := "One sentence. Two sentences."
	res, err := ChunkParagraphs([]string{para}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Paragraphs) != 1 || res.Paragraphs[0] != para {
		t.Errorf("paragraphs = %#v, want original untouched", res.Paragraphs)
	}
	if res.ChunksCreated != 0 {
		t.Errorf("chunksCreated = %d, want 0", res.ChunksCreated)
	}
}

func TestChunkParagraphs_ExactBoundary(t *testing.T) {
	para := "A. B. C."
	res, err := ChunkParagraphs([]string{para}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.ChunksCreated != 0 {
		t.Errorf("paragraph at the limit should not be split, chunksCreated = %d", res.ChunksCreated)
	}
}

func TestChunkParagraphs_ConservesSentences(t *testing.T) {
	paras := []string{
		"A. B. C. D. E.",
		"F.",
		"G. H. I. J. K. L. M.",
	}
	res, err := ChunkParagraphs(paras, 2)
	if err != nil {
		t.Fatal(err)
	}

	var before, after []string
	for _, p := range paras {
		before = append(before, SplitSentences(p)...)
	}
	for _, p := range res.Paragraphs {
		after = append(after, SplitSentences(p)...)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("sentence sequence changed:\nbefore %#v\nafter  %#v", before, after)
	}
	if res.ChunksCreated != 2 {
		t.Errorf("chunksCreated = %d, want 2", res.ChunksCreated)
	}
}

func TestChunkParagraphs_JoinsWithSingleSpace(t *testing.T) {
	res, err := ChunkParagraphs([]string{"A.  B.   C. D."}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range res.Paragraphs {
		if strings.Contains(p, "  ") {
			t.Errorf("chunk %q contains doubled spaces", p)
		}
	}
}

func TestChunkParagraphs_RejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -3} {
		_, err := ChunkParagraphs([]string{"A. B."}, limit)
		if !errors.Is(err, apperr.ErrInvalidConfiguration) {
			t.Errorf("limit %d: err = %v, want ErrInvalidConfiguration", limit, err)
		}
	}
}
