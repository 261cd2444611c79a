// Package processor turns HTML documentation pages into markdown so they can
// go through the same segmentation as MDX sources.
package processor

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Page is an HTML source converted to markdown.
type Page struct {
	Title    string
	Markdown string
}

// Processor converts HTML content to Markdown.
type Processor struct{}

// New creates a new HTML to Markdown processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms an HTML page into markdown and extracts its title.
func (p *Processor) Convert(htmlContent string) (*Page, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return &Page{}, nil
	}

	md, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to convert html: %w", err)
	}

	return &Page{
		Title:    p.ExtractTitle(htmlContent),
		Markdown: strings.TrimSpace(md),
	}, nil
}

// ExtractTitle returns the <title> text, falling back to the first <h1>.
func (p *Processor) ExtractTitle(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	if n := findElement(doc, "title"); n != nil {
		if t := strings.TrimSpace(textOf(n)); t != "" {
			return t
		}
	}
	if n := findElement(doc, "h1"); n != nil {
		return strings.Join(strings.Fields(textOf(n)), " ")
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
