package fulltext

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mfenderov/ko-docsearch/internal/hangul"
)

var separators = regexp.MustCompile(`[\n\r\p{Z}\p{P}]+`)

// Tokenize splits text on whitespace, line breaks and punctuation.
func Tokenize(text string) []string {
	parts := separators.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// analyzer normalizes tokens into index terms. A Caser keeps state between
// calls, so each analysis run gets its own.
type analyzer struct {
	lower cases.Caser
}

func newAnalyzer() *analyzer {
	return &analyzer{lower: cases.Lower(language.Und)}
}

// term keeps consonant-only tokens verbatim so initial-consonant queries can
// hit them; everything else is lower-cased.
func (a *analyzer) term(token string) string {
	if hangul.IsChosung(token) {
		return token
	}
	return a.lower.String(token)
}

func (a *analyzer) terms(text string) []string {
	tokens := Tokenize(text)
	out := tokens[:0]
	for _, tok := range tokens {
		if t := a.term(tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}
