package search

import (
	"strings"

	"github.com/mfenderov/ko-docsearch/internal/hangul"
)

// DefaultSuggestLimit is used when Suggest is called with a non-positive
// limit.
const DefaultSuggestLimit = 5

// Suggest returns distinct titles for type-ahead completion: titles
// containing the query, then Korean substring matches, then for
// consonant-only queries titles whose initial consonants contain it.
func (ix *Index) Suggest(query string, limit int) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	var out []string
	seen := make(map[string]bool)
	add := func(title string) {
		if !seen[title] {
			seen[title] = true
			out = append(out, title)
		}
	}

	lower := strings.ToLower(query)
	for _, d := range ix.docs {
		if strings.Contains(strings.ToLower(d.Title), lower) {
			add(d.Title)
		}
	}
	for _, title := range ix.titles.Items(query) {
		add(title)
	}
	if hangul.IsChosung(query) {
		for _, g := range ix.groups {
			if strings.Contains(g.chosung.Text, query) {
				add(g.title)
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
