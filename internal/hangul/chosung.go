package hangul

import (
	"strings"
	"unicode"
)

// IsChosung reports whether s consists only of Korean consonants, i.e. it is
// a compressed initial-consonant query such as "ㄱㅇㄷ".
func IsChosung(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsConsonant(r) {
			return false
		}
	}
	return true
}

// Chosung is the initial consonant string of a text together with the byte
// offsets in the text every consonant was derived from.
type Chosung struct {
	Text    string
	sources []letter
}

// ExtractChosung returns the leading consonant of every syllable of s.
// Consonants and whitespace are kept as is; all other characters are
// dropped, so "API 레퍼런스" becomes " ㄹㅍㄹㅅ".
func ExtractChosung(s string) Chosung {
	var (
		b       strings.Builder
		sources []letter
	)
	for _, l := range decompose(s) {
		switch {
		case l.lead != 0:
			b.WriteRune(l.lead)
		case IsConsonant(l.r), unicode.IsSpace(l.r):
			b.WriteRune(l.r)
		default:
			continue
		}
		sources = append(sources, l)
	}
	return Chosung{Text: b.String(), sources: sources}
}

// GetChosung returns ExtractChosung(s).Text.
func GetChosung(s string) string {
	return ExtractChosung(s).Text
}

// Find locates query in the chosung string and returns the byte range of the
// source text it covers.
func (c Chosung) Find(query string) (start, end int, ok bool) {
	i := strings.Index(c.Text, query)
	if i < 0 || query == "" {
		return 0, 0, false
	}
	first := len([]rune(c.Text[:i]))
	n := len([]rune(query))
	from := c.sources[first]
	to := c.sources[first+n-1]
	return from.offset, to.offset + to.width, true
}
