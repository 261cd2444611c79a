package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

const snippetRunes = 300

// markers returns the highlight delimiters for w: ANSI bold on a terminal,
// markdown emphasis otherwise.
func markers(w io.Writer) (string, string) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\x1b[1;33m", "\x1b[0m"
	}
	return "**", "**"
}

// snippet returns the highlighted field of r cut to snippetRunes, with the
// spans that survive the cut marked.
func snippet(r models.SearchResult, open, close string) string {
	text := r.HighlightedText()
	cut := len(text)
	suffix := ""
	if utf8.RuneCountInString(text) > snippetRunes {
		n := 0
		for i := range text {
			if n == snippetRunes {
				cut = i
				break
			}
			n++
		}
		suffix = "..."
	}

	var spans []models.Span
	if r.Highlight != nil {
		for _, s := range r.Highlight.Spans {
			if s.End <= cut {
				spans = append(spans, s)
			}
		}
	}
	return models.Mark(text[:cut], spans, open, close) + suffix
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func printResults(w io.Writer, results []models.SearchResult) {
	open, close := markers(w)
	fmt.Fprintf(w, "Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(w, "─── Result %d ───\n", i+1)
		fmt.Fprintf(w, "Title:   %s\n", r.Title)
		fmt.Fprintf(w, "URL:     %s\n", r.Href())
		if r.Section != "" {
			fmt.Fprintf(w, "Section: %s\n", r.Section)
		}
		fmt.Fprintf(w, "Score:   %.3f\n", r.Score)
		fmt.Fprintf(w, "Content:\n%s\n\n", snippet(r, open, close))
	}
}
