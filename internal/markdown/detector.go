package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	headerPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	listPattern   = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern   = regexp.MustCompile(`\[.+?\]\(.+?\)`)
)

const frontMatterFence = "---"

// IsMarkdownPath checks if the file name has a markdown or MDX extension.
func IsMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx", ".markdown":
		return true
	}
	return false
}

// IsHTMLPath checks if the file name has an HTML extension.
func IsHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// IsMarkdownContent uses heuristics to detect if content is markdown.
func IsMarkdownContent(content string) bool {
	if content == "" {
		return false
	}

	trimmed := strings.TrimSpace(strings.TrimPrefix(content, "\ufeff"))

	// If it looks like HTML, it's not markdown
	if LooksLikeHTML(trimmed) {
		return false
	}

	// Front-matter fenced documents are MDX/markdown sources
	if strings.HasPrefix(trimmed, frontMatterFence) {
		return true
	}

	return headerPattern.MatchString(trimmed) ||
		listPattern.MatchString(trimmed) ||
		linkPattern.MatchString(trimmed)
}

// LooksLikeHTML checks if content appears to be an HTML document.
func LooksLikeHTML(content string) bool {
	lower := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body")
}

// Detect decides whether a source file is markdown.
// Checks in order: extension, then content heuristics. HTML documents are
// never markdown even when misnamed.
func Detect(path, content string) bool {
	if IsHTMLPath(path) || LooksLikeHTML(content) {
		return false
	}
	if IsMarkdownPath(path) {
		return true
	}
	return IsMarkdownContent(content)
}
