package processor

import (
	"strings"
	"testing"
)

func TestProcessor_Convert(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string // Expected substrings in output
	}{
		{
			name: "converts headings",
			html: `<html><body><h1>가이드</h1><h2>Installation</h2></body></html>`,
			contains: []string{
				"# 가이드",
				"## Installation",
			},
		},
		{
			name: "converts paragraphs",
			html: `<html><body><p>설치 방법을 설명합니다.</p><p>Second paragraph.</p></body></html>`,
			contains: []string{
				"설치 방법을 설명합니다.",
				"Second paragraph.",
			},
		},
		{
			name: "converts links",
			html: `<html><body><p>Check <a href="/docs/api">API 레퍼런스</a>.</p></body></html>`,
			contains: []string{
				"[API 레퍼런스](/docs/api)",
			},
		},
		{
			name: "converts inline code",
			html: `<html><body><p>Use <code>getCharacter()</code> to fetch.</p></body></html>`,
			contains: []string{
				"`getCharacter()`",
			},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(page.Markdown, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, page.Markdown)
				}
			}
		})
	}
}

func TestProcessor_Convert_Title(t *testing.T) {
	p := New()

	page, err := p.Convert(`<html><head><title>API 레퍼런스</title></head><body><p>Content</p></body></html>`)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if page.Title != "API 레퍼런스" {
		t.Errorf("Title = %q, want %q", page.Title, "API 레퍼런스")
	}
}

func TestProcessor_Convert_EmptyInput(t *testing.T) {
	p := New()

	page, err := p.Convert("  ")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if page.Markdown != "" || page.Title != "" {
		t.Errorf("Convert() = %+v, want empty page", page)
	}
}

func TestProcessor_ExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"title element", `<html><head><title> 가이드 </title></head></html>`, "가이드"},
		{"falls back to h1", `<html><body><h1>설치  <em>방법</em></h1></body></html>`, "설치 방법"},
		{"no title", `<html><body><p>No title here</p></body></html>`, ""},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ExtractTitle(tt.html); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
