// Package hangul provides the Korean text primitives the search engine is
// built on: initial consonant (chosung) extraction and a Korean-aware
// substring matcher.
package hangul

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// Compatibility jamo range for consonants, the characters users type
	// for a chosung query.
	compatConsonantFirst = 'ㄱ' // U+3131
	compatConsonantLast  = 'ㅎ' // U+314E

	// Conjoining leading consonants produced by canonical decomposition.
	leadFirst = 'ᄀ'
	leadLast  = 'ᄒ'
)

// leadToCompat maps U+1100..U+1112 to their compatibility forms.
var leadToCompat = []rune("ㄱㄲㄴㄷㄸㄹㅁㅂㅃㅅㅆㅇㅈㅉㅊㅋㅌㅍㅎ")

// letter is one rune of text with its canonical decomposition.
type letter struct {
	r      rune
	lower  rune
	lead   rune // compatibility consonant, 0 when r is not a syllable
	vowel  rune // conjoining vowel
	tail   rune // conjoining final consonant, 0 when absent
	offset int  // byte offset of r in the source text
	width  int  // byte width of r
}

func (l letter) isSyllable() bool { return l.lead != 0 && l.vowel != 0 }

// decompose splits s into letters, decomposing precomposed syllables with
// canonical decomposition (NFD).
func decompose(s string) []letter {
	out := make([]letter, 0, len(s)/2)
	var buf []byte
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		l := letter{r: r, lower: unicode.ToLower(r), offset: i, width: width}
		i += width
		if r >= leadFirst && r <= leadLast {
			l.lead = leadToCompat[r-leadFirst]
		} else if unicode.Is(unicode.Hangul, r) && !IsConsonant(r) {
			buf = norm.NFD.AppendString(buf[:0], string(r))
			jamo := []rune(string(buf))
			if len(jamo) >= 2 && jamo[0] >= leadFirst && jamo[0] <= leadLast {
				l.lead = leadToCompat[jamo[0]-leadFirst]
				l.vowel = jamo[1]
				if len(jamo) > 2 {
					l.tail = jamo[2]
				}
			}
		}
		out = append(out, l)
	}
	return out
}

// IsConsonant reports whether r is a compatibility consonant (ㄱ..ㅎ).
func IsConsonant(r rune) bool {
	return r >= compatConsonantFirst && r <= compatConsonantLast
}
