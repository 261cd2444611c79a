// Package segmenter turns documentation sources into the flat search
// document set: one main document per file plus one document per meaningful
// paragraph, each paragraph tied to its closest heading anchor.
package segmenter

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mfenderov/ko-docsearch/internal/markdown"
	"github.com/mfenderov/ko-docsearch/internal/processor"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// Lengths and the heading probe count Unicode code points. This is part of
// the artifact contract: a paragraph of astral-plane characters such as emoji
// counts half of what a UTF-16 count would, so it can land on the other side
// of a threshold than it would in a UTF-16 based segmenter.
const (
	// Paragraphs this short or shorter are dropped.
	minParagraphLength = 10
	// Paragraphs longer than this get their own document.
	minDocumentLength = 20
	// Heading texts are compared against this many leading characters.
	headingProbeLength = 50
)

// callPattern finds the first identifier followed by "(" in a paragraph.
var callPattern = regexp.MustCompile(`(\w+)\s*\(`)

// Options controls document generation.
type Options struct {
	// RoutePrefix is the documentation route urls are built under.
	RoutePrefix string
}

// Stats summarizes a segmentation run.
type Stats struct {
	Sources    int
	Documents  int
	Paragraphs int
	Anchored   int
}

// Segment converts sources into search documents. It is a pure transform:
// the same sources always produce the same documents in the same order.
func Segment(sources []Source, opts Options) ([]models.SearchDocument, error) {
	conv := processor.New()
	var docs []models.SearchDocument
	for _, src := range sources {
		fileDocs, err := segmentSource(conv, src, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

// Summarize counts the documents of a Segment result.
func Summarize(sources []Source, docs []models.SearchDocument) Stats {
	st := Stats{Sources: len(sources), Documents: len(docs)}
	for _, d := range docs {
		if d.IsMain() {
			continue
		}
		st.Paragraphs++
		if d.AnchorID != "" {
			st.Anchored++
		}
	}
	return st
}

func segmentSource(conv *processor.Processor, src Source, opts Options) ([]models.SearchDocument, error) {
	content := strings.ReplaceAll(src.Body, "\r\n", "\n")

	var (
		meta     map[string]string
		body     string
		fallback string
	)
	if src.IsHTML() {
		page, err := conv.Convert(content)
		if err != nil {
			return nil, err
		}
		meta, body, fallback = map[string]string{}, page.Markdown, page.Title
	} else {
		var err error
		meta, body, err = splitFrontMatter(content)
		if err != nil {
			return nil, err
		}
	}

	stem := strings.TrimSuffix(src.Name, filepath.Ext(src.Name))
	title := firstNonEmpty(meta["title"], meta["nav"], fallback, stem)
	url := path.Join("/", opts.RoutePrefix, stem)
	section := meta["section"]

	headings := markdown.ExtractHeadings(body)
	paragraphs := splitParagraphs(markdown.Strip(body))

	docs := make([]models.SearchDocument, 0, len(paragraphs)+1)
	docs = append(docs, models.SearchDocument{
		ID:      models.MainDocumentID(src.Name),
		Title:   title,
		Content: strings.Join(paragraphs, " "),
		URL:     url,
		Section: section,
	})

	for i, p := range paragraphs {
		if utf8.RuneCountInString(p) <= minDocumentLength {
			continue
		}
		docs = append(docs, models.SearchDocument{
			ID:       models.ParagraphDocumentID(src.Name, i),
			Title:    title,
			Content:  p,
			URL:      url,
			Section:  section,
			AnchorID: anchorFor(p, headings),
		})
	}
	return docs, nil
}

// splitParagraphs splits stripped text on blank lines, joins wrapped lines
// and drops paragraphs that are too short to be useful.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if utf8.RuneCountInString(p) > minParagraphLength {
			out = append(out, p)
		}
	}
	return out
}

// anchorFor picks the heading a paragraph belongs to, first match in heading
// order. A heading matches when its text occurs in the paragraph or contains
// the paragraph's opening; failing that, when it mentions the first function
// called in the paragraph. Headings without an anchor id are never picked.
func anchorFor(paragraph string, headings []markdown.Heading) string {
	lower := strings.ToLower(paragraph)
	probe := truncateRunes(lower, headingProbeLength)

	for _, h := range headings {
		if h.AnchorID == "" {
			continue
		}
		text := strings.ToLower(h.Text)
		if strings.Contains(lower, text) || strings.Contains(text, probe) {
			return h.AnchorID
		}
	}

	m := callPattern.FindStringSubmatch(paragraph)
	if m == nil {
		return ""
	}
	name := strings.ToLower(m[1])
	for _, h := range headings {
		if h.AnchorID != "" && strings.Contains(strings.ToLower(h.Text), name) {
			return h.AnchorID
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
