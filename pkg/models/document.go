package models

import (
	"fmt"
	"strings"
)

// MainIDSuffix marks the id of the synthetic whole-file document of a source.
// The segmenter produces it and the search router relies on it when picking a
// representative document for a title.
const MainIDSuffix = "-main"

// SearchDocument is the atomic indexed unit and the element type of the index
// artifact. The JSON shape is the artifact schema; changing it is breaking.
type SearchDocument struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	URL      string `json:"url"`
	Section  string `json:"section,omitempty"`
	AnchorID string `json:"anchorId,omitempty"`
}

// IsMain reports whether the document represents a whole source file.
func (d SearchDocument) IsMain() bool {
	return strings.HasSuffix(d.ID, MainIDSuffix)
}

// Href returns the navigation target: the url, suffixed with #anchorId when
// the document is tied to a heading.
func (d SearchDocument) Href() string {
	if d.AnchorID == "" {
		return d.URL
	}
	return d.URL + "#" + d.AnchorID
}

// MainDocumentID returns the id of the main document for a source file.
func MainDocumentID(source string) string {
	return source + MainIDSuffix
}

// ParagraphDocumentID returns the id of the document built from the
// paragraph at index of a source file.
func ParagraphDocumentID(source string, index int) string {
	return fmt.Sprintf("%s-%d", source, index)
}

// Span is a matched region of a field as [Start, End) byte offsets.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlight field names.
const (
	FieldTitle   = "title"
	FieldContent = "content"
)

// Highlight marks the matched regions of one field of a result.
type Highlight struct {
	Field string `json:"field"`
	Spans []Span `json:"spans,omitempty"`
}

// SearchResult is a SearchDocument with its relevance score and highlight.
type SearchResult struct {
	SearchDocument
	Score     float64    `json:"score"`
	Highlight *Highlight `json:"highlight,omitempty"`
}

// HighlightedText returns the highlighted field of r.
func (r SearchResult) HighlightedText() string {
	if r.Highlight != nil && r.Highlight.Field == FieldTitle {
		return r.Title
	}
	return r.Content
}

// Mark wraps every span of text in open/close markers. Spans must be sorted
// and non-overlapping; invalid spans are skipped.
func Mark(text string, spans []Span, open, close string) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(open)+len(close)))
	last := 0
	for _, s := range spans {
		if s.Start < last || s.End > len(text) || s.Start >= s.End {
			continue
		}
		b.WriteString(text[last:s.Start])
		b.WriteString(open)
		b.WriteString(text[s.Start:s.End])
		b.WriteString(close)
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}
