package services

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonLexicalRe = regexp.MustCompile(`[^a-z0-9+.# ]`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
)

// NormalizeText lower-cases the input, collapses whitespace runs to single
// spaces and strips every character outside [a-z0-9 +.#]. Tokens such as
// "c++", "c#" and "node.js" survive. Empty input yields an empty string.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = nonLexicalRe.ReplaceAllString(text, "")
	// Stripping a symbol can leave adjacent spaces behind; collapse again so
	// normalize(normalize(x)) == normalize(x).
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TokenizeText splits normalized text into sentences and words. The
// decomposition is only used for reporting counts, not for matching.
func TokenizeText(text string) (sentences []string, words []string) {
	for _, s := range sentenceRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	words = strings.Fields(text)
	return sentences, words
}
