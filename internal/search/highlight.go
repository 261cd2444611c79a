package search

import (
	"regexp"
	"unicode/utf8"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// minHighlightLength is the shortest query that gets content highlighting.
const minHighlightLength = 2

// highlightQuery returns every case-insensitive literal occurrence of query
// in text.
func highlightQuery(text, query string) []models.Span {
	if utf8.RuneCountInString(query) < minHighlightLength {
		return nil
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(query))
	if err != nil {
		return nil
	}
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]models.Span, len(locs))
	for i, loc := range locs {
		spans[i] = models.Span{Start: loc[0], End: loc[1]}
	}
	return spans
}

func titleHighlight(start, end int) *models.Highlight {
	return &models.Highlight{
		Field: models.FieldTitle,
		Spans: []models.Span{{Start: start, End: end}},
	}
}
