package markdown

import (
	"regexp"
	"strings"
)

// Heading is a markdown heading with the anchor id the docs renderer assigns
// to it.
type Heading struct {
	Text     string
	AnchorID string
	Level    int
}

var (
	headingLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

	// slugSpace is the whitespace set of the renderer's slug rule. It is wider
	// than RE2's \s, which would drop U+3000 and NBSP instead of hyphenating.
	slugSpace = `\t\n\v\f\r \x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

	slugDisallowed = regexp.MustCompile(`[^a-z0-9가-힣` + slugSpace + `]`)
	slugSpaces     = regexp.MustCompile(`[` + slugSpace + `]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// ExtractHeadings returns every ATX heading of body in document order.
// It must run on the raw body, before Strip removes the markers.
func ExtractHeadings(body string) []Heading {
	matches := headingLine.FindAllStringSubmatch(body, -1)
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		text := strings.TrimSpace(m[2])
		headings = append(headings, Heading{
			Text:     text,
			AnchorID: Slugify(text),
			Level:    len(m[1]),
		})
	}
	return headings
}

// Slugify converts heading text into its anchor id. The result has to be
// byte-identical to the ids the site renderer puts on heading elements,
// otherwise scroll-to-anchor navigation silently breaks.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	return s
}
