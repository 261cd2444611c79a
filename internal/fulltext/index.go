// Package fulltext is a small in-memory inverted index with BM25+ ranking
// and prefix and fuzzy term expansion.
package fulltext

import (
	"slices"
)

// Document is one indexable record. Fields holds the searchable text per
// field name; Stored is returned untouched on hits.
type Document struct {
	ID     string
	Fields map[string]string
	Stored map[string]string
}

// Index is immutable once built and safe for concurrent searches.
type Index struct {
	fields []string
	docs   []Document
	ids    map[string]int

	// postings maps term -> field position -> document position -> frequency
	postings map[string][]map[int]int
	// vocabulary is the sorted term list used for prefix and fuzzy scans
	vocabulary []string

	fieldLengths [][]int
	avgLengths   []float64
}

// Build indexes docs over the given field names.
func Build(fields []string, docs []Document) *Index {
	idx := &Index{
		fields:       slices.Clone(fields),
		docs:         slices.Clone(docs),
		ids:          make(map[string]int, len(docs)),
		postings:     make(map[string][]map[int]int),
		fieldLengths: make([][]int, len(docs)),
		avgLengths:   make([]float64, len(fields)),
	}

	a := newAnalyzer()
	totals := make([]int, len(fields))
	for d, doc := range docs {
		idx.ids[doc.ID] = d
		idx.fieldLengths[d] = make([]int, len(fields))
		for f, name := range fields {
			unique := make(map[string]bool)
			for _, t := range a.terms(doc.Fields[name]) {
				unique[t] = true
				idx.add(t, f, d)
			}
			// field length counts distinct terms
			idx.fieldLengths[d][f] = len(unique)
			totals[f] += len(unique)
		}
	}
	for f := range fields {
		if len(docs) > 0 {
			idx.avgLengths[f] = float64(totals[f]) / float64(len(docs))
		}
	}

	idx.vocabulary = make([]string, 0, len(idx.postings))
	for t := range idx.postings {
		idx.vocabulary = append(idx.vocabulary, t)
	}
	slices.Sort(idx.vocabulary)
	return idx
}

func (idx *Index) add(term string, field, doc int) {
	p, ok := idx.postings[term]
	if !ok {
		p = make([]map[int]int, len(idx.fields))
		idx.postings[term] = p
	}
	if p[field] == nil {
		p[field] = make(map[int]int)
	}
	p[field][doc]++
}

// DocumentCount returns the number of indexed documents.
func (idx *Index) DocumentCount() int {
	return len(idx.docs)
}

// TermCount returns the vocabulary size.
func (idx *Index) TermCount() int {
	return len(idx.vocabulary)
}

// Document returns the indexed document with id.
func (idx *Index) Document(id string) (Document, bool) {
	d, ok := idx.ids[id]
	if !ok {
		return Document{}, false
	}
	return idx.docs[d], true
}
