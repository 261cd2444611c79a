// Package search answers documentation queries over a prebuilt document set.
//
// An Index combines three strategies: Korean initial-consonant matching on
// titles, Korean-aware substring matching on titles, and ranked full-text
// search over titles and content. The router runs them in that order and
// keeps at most one result per page.
package search

import (
	"errors"
	"fmt"

	"github.com/mfenderov/ko-docsearch/internal/fulltext"
	"github.com/mfenderov/ko-docsearch/internal/hangul"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// ErrInvalidDocument is returned by Build for documents that cannot be
// indexed.
var ErrInvalidDocument = errors.New("invalid search document")

var indexedFields = []string{models.FieldTitle, models.FieldContent}

// Stats describes a built index.
type Stats struct {
	TotalDocuments   int `json:"totalDocuments"`
	UniqueTitles     int `json:"uniqueTitles"`
	IndexedDocuments int `json:"indexedDocuments"`
}

// titleGroup holds every document sharing a title, in document order.
type titleGroup struct {
	title   string
	chosung hangul.Chosung
	docs    []models.SearchDocument
}

// representative is the main document of the group, else its first.
func (g *titleGroup) representative() models.SearchDocument {
	for _, d := range g.docs {
		if d.IsMain() {
			return d
		}
	}
	return g.docs[0]
}

// Index is immutable after Build and safe for concurrent use.
type Index struct {
	docs    []models.SearchDocument
	byID    map[string]int
	groups  []*titleGroup
	byTitle map[string]*titleGroup
	titles  *hangul.Matcher
	text    *fulltext.Index
}

// Build validates docs and builds every structure the strategies need.
func Build(docs []models.SearchDocument) (*Index, error) {
	ix := &Index{
		docs:    make([]models.SearchDocument, len(docs)),
		byID:    make(map[string]int, len(docs)),
		byTitle: make(map[string]*titleGroup),
	}
	copy(ix.docs, docs)

	records := make([]fulltext.Document, 0, len(docs))
	for i, d := range ix.docs {
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", ErrInvalidDocument, i, err)
		}
		if prev, dup := ix.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: document %d: id %q already used by document %d", ErrInvalidDocument, i, d.ID, prev)
		}
		ix.byID[d.ID] = i

		g, ok := ix.byTitle[d.Title]
		if !ok {
			g = &titleGroup{title: d.Title, chosung: hangul.ExtractChosung(d.Title)}
			ix.byTitle[d.Title] = g
			ix.groups = append(ix.groups, g)
		}
		g.docs = append(g.docs, d)

		records = append(records, fulltext.Document{
			ID: d.ID,
			Fields: map[string]string{
				models.FieldTitle:   d.Title,
				models.FieldContent: d.Content,
			},
			Stored: map[string]string{
				"id":      d.ID,
				"title":   d.Title,
				"url":     d.URL,
				"section": d.Section,
			},
		})
	}

	titles := make([]string, len(ix.groups))
	for i, g := range ix.groups {
		titles[i] = g.title
	}
	ix.titles = hangul.NewMatcher(titles)
	ix.text = fulltext.Build(indexedFields, records)
	return ix, nil
}

func validate(d models.SearchDocument) error {
	switch {
	case d.ID == "":
		return errors.New("missing id")
	case d.Title == "":
		return fmt.Errorf("%s: missing title", d.ID)
	case d.URL == "":
		return fmt.Errorf("%s: missing url", d.ID)
	}
	return nil
}

// Stats returns document, title and full-text counts.
func (ix *Index) Stats() Stats {
	return Stats{
		TotalDocuments:   len(ix.docs),
		UniqueTitles:     len(ix.groups),
		IndexedDocuments: ix.text.DocumentCount(),
	}
}

// Document returns the document with id.
func (ix *Index) Document(id string) (models.SearchDocument, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return models.SearchDocument{}, false
	}
	return ix.docs[i], true
}

// Documents returns a copy of the indexed documents in input order.
func (ix *Index) Documents() []models.SearchDocument {
	out := make([]models.SearchDocument, len(ix.docs))
	copy(out, ix.docs)
	return out
}
