package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "", Truncate("", 5))
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	// 2-byte runes; odd byte caps land mid-rune without the boundary backoff
	input := strings.Repeat("é", 10)

	for n := 1; n < len(input); n++ {
		got := Truncate(input, n)
		assert.True(t, utf8.ValidString(got), "cap %d produced invalid UTF-8: %q", n, got)
		assert.True(t, strings.HasSuffix(got, "..."))
	}
}

func TestBuildInterviewPromptIncludesReferenceMaterial(t *testing.T) {
	pb := NewPromptBuilder()

	prompt := pb.BuildInterviewPrompt("go, sql", "3+ years", "web stuff", "guide excerpt", "resume text", "jd text")

	assert.Contains(t, prompt, "Reference Material:")
	assert.Contains(t, prompt, "guide excerpt")
	assert.Contains(t, prompt, "web stuff")
	assert.Contains(t, prompt, "3+ years")
}
