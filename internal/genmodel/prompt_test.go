package genmodel

import (
	"strings"
	"testing"

	"github.com/attuneweb/attune/internal/profile"
)

func TestInstructionPrefix_Deterministic(t *testing.T) {
	s := profile.Settings{Level: profile.LevelBasic, ChunkingEnabled: true, MaxSentences: 3, UseAnalogies: true}
	first := InstructionPrefix(s)
	for i := 0; i < 5; i++ {
		if got := InstructionPrefix(s); got != first {
			t.Fatalf("prefix differs between calls: %q vs %q", got, first)
		}
	}
}

func TestInstructionPrefix_ReflectsSettings(t *testing.T) {
	s := profile.Settings{Level: profile.LevelBasic, ChunkingEnabled: true, MaxSentences: 2, UseAnalogies: true}
	p := InstructionPrefix(s)
	for _, want := range []string{"basic-level vocabulary", "at most 2 sentences", "analogy"} {
		if !strings.Contains(p, want) {
			t.Errorf("prefix missing %q: %q", want, p)
		}
	}

	off := InstructionPrefix(profile.Settings{Level: profile.LevelNone})
	if !strings.Contains(off, "Keep the original vocabulary.") {
		t.Errorf("prefix = %q", off)
	}
	if !strings.Contains(off, "Do not add analogies.") {
		t.Errorf("prefix = %q", off)
	}
	if strings.Contains(off, "sentences each") {
		t.Errorf("chunking instruction present when disabled: %q", off)
	}
}

func TestProfilePrompt_SortedAnswers(t *testing.T) {
	answers := map[string]string{
		"reading_style":  "short",
		"distraction":    "ads bother me",
		"complex_topics": "simple words",
	}
	p := profilePrompt(answers)

	i := strings.Index(p, "complex_topics")
	j := strings.Index(p, "distraction")
	k := strings.Index(p, "reading_style")
	if !(i >= 0 && i < j && j < k) {
		t.Errorf("answers not in sorted key order:\n%s", p)
	}
	if !strings.Contains(p, "simplificationLevel") {
		t.Errorf("prompt missing schema:\n%s", p)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{\"a\":1}", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```JSON\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
