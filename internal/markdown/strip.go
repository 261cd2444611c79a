package markdown

import (
	"regexp"
	"strings"
)

// Markup removal rules, applied in this order. Links go last so their text
// survives the emphasis and code rules untouched.
var stripRules = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	// fenced code blocks
	{regexp.MustCompile("(?s)```.*?```"), ""},
	// heading markers
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	// bold
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	// italic
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	// inline code
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	// links keep their text
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
}

// Strip removes markdown markup from body and returns trimmed plain text.
// Paragraph breaks (blank lines) are preserved.
func Strip(body string) string {
	for _, rule := range stripRules {
		body = rule.pattern.ReplaceAllString(body, rule.repl)
	}
	return strings.TrimSpace(body)
}
