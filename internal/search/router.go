package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mfenderov/ko-docsearch/internal/fulltext"
	"github.com/mfenderov/ko-docsearch/internal/hangul"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// DefaultLimit is used when Search is called with a non-positive limit.
const DefaultLimit = 10

const (
	chosungScore   = 1.0
	substringScore = 0.9
	fullTextFuzzy  = 0.3
)

// Match is a strategy hit before deduplication.
type Match struct {
	Document  models.SearchDocument
	Score     float64
	Highlight *models.Highlight
}

// Strategy produces at most budget matches for query. Strategies do not
// deduplicate; the router does.
type Strategy func(ix *Index, query string, budget int) []Match

// strategies run in this order; earlier strategies claim a page first.
var strategies = []Strategy{
	ByChosung,
	ByTitleSubstring,
	ByFullText,
}

// Search runs every strategy until limit results are collected and returns
// them by descending score, at most one per url.
func (ix *Index) Search(query string, limit int) []models.SearchResult {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var results []models.SearchResult
	seenURLs := make(map[string]bool)
	for _, strategy := range strategies {
		if len(results) >= limit {
			break
		}
		for _, m := range strategy(ix, query, limit-len(results)) {
			if seenURLs[m.Document.URL] {
				continue
			}
			seenURLs[m.Document.URL] = true
			results = append(results, models.SearchResult{
				SearchDocument: m.Document,
				Score:          m.Score,
				Highlight:      m.Highlight,
			})
		}
	}

	for i := range results {
		if results[i].Score == 0 {
			results[i].Score = 1.0
		}
	}
	slices.SortStableFunc(results, func(a, b models.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ByChosung matches consonant-only queries against the initial consonants of
// every title, in title order.
func ByChosung(ix *Index, query string, budget int) []Match {
	if !hangul.IsChosung(query) {
		return nil
	}
	var out []Match
	for _, g := range ix.groups {
		if len(out) >= budget {
			break
		}
		start, end, ok := g.chosung.Find(query)
		if !ok {
			continue
		}
		out = append(out, Match{
			Document:  g.representative(),
			Score:     chosungScore,
			Highlight: titleHighlight(start, end),
		})
	}
	return out
}

// ByTitleSubstring matches titles containing the query, with partially typed
// syllables and consonants accepted.
func ByTitleSubstring(ix *Index, query string, budget int) []Match {
	var out []Match
	for _, tm := range ix.titles.Search(query) {
		if len(out) >= budget {
			break
		}
		g, ok := ix.byTitle[tm.Item]
		if !ok {
			continue
		}
		out = append(out, Match{
			Document:  g.representative(),
			Score:     substringScore,
			Highlight: titleHighlight(tm.Start, tm.End),
		})
	}
	return out
}

// ByFullText ranks documents with the inverted index over titles and
// content.
func ByFullText(ix *Index, query string, budget int) []Match {
	opts := fulltext.DefaultSearchOptions()
	opts.Fuzzy = fullTextFuzzy
	opts.Boost = map[string]float64{models.FieldTitle: 3, models.FieldContent: 1}

	hits := ix.text.Search(query, opts)
	if len(hits) > budget {
		hits = hits[:budget]
	}
	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		doc, ok := ix.Document(h.ID)
		if !ok {
			continue
		}
		m := Match{Document: doc, Score: h.Score}
		if spans := highlightQuery(doc.Content, query); spans != nil {
			m.Highlight = &models.Highlight{Field: models.FieldContent, Spans: spans}
		}
		out = append(out, m)
	}
	return out
}
