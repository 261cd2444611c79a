package segmenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

const installGuide = `---
title: 설치 가이드
section: 시작하기
---

# Installation

Too short

Run the installation script once.

## Configuration

Edit the configuration file before starting the server.
`

func src(name, body string) Source {
	return Source{Name: name, Path: name, Body: body}
}

func TestSegment_Documents(t *testing.T) {
	docs, err := Segment([]Source{src("install.mdx", installGuide)}, Options{RoutePrefix: "/docs"})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	main := docs[0]
	assert.Equal(t, "install.mdx-main", main.ID)
	assert.True(t, main.IsMain())
	assert.Equal(t, "설치 가이드", main.Title)
	assert.Equal(t, "/docs/install", main.URL)
	assert.Equal(t, "시작하기", main.Section)
	assert.Empty(t, main.AnchorID)
	assert.Equal(t,
		"Installation Run the installation script once. Configuration Edit the configuration file before starting the server.",
		main.Content)
	assert.NotContains(t, main.Content, "Too short")

	// paragraph indices count the filtered list: 0 is the heading line
	assert.Equal(t, "install.mdx-1", docs[1].ID)
	assert.Equal(t, "Run the installation script once.", docs[1].Content)
	assert.Equal(t, "installation", docs[1].AnchorID)
	assert.Equal(t, "/docs/install", docs[1].URL)

	assert.Equal(t, "install.mdx-3", docs[2].ID)
	assert.Equal(t, "configuration", docs[2].AnchorID)
}

func TestSegment_ParagraphLengths(t *testing.T) {
	body := "# Installation\n\n" +
		"123456789\n\n" + // 9, dropped
		"installation 4567890123\n\n" + // 23, own document
		"fifteen chars!!" // 15, main only
	docs, err := Segment([]Source{src("a.md", body)}, Options{RoutePrefix: "/docs"})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "Installation installation 4567890123 fifteen chars!!", docs[0].Content)
	assert.Equal(t, "installation 4567890123", docs[1].Content)
	assert.Equal(t, "installation", docs[1].AnchorID)
}

func TestSegment_HangulLengthsCountCharacters(t *testing.T) {
	// 11 syllables is 33 bytes but still only a main-content paragraph
	body := "가나다라마바사아자차카\n\n" + strings.Repeat("가", 21)
	docs, err := Segment([]Source{src("k.md", body)}, Options{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "k.md-1", docs[1].ID)
}

func TestSegment_EmojiLengthsCountCodePoints(t *testing.T) {
	// 6 and 11 code points; as UTF-16 they would be 12 and 22 units
	short := strings.Repeat("😀", 6)
	mid := strings.Repeat("😀", 11)
	docs, err := Segment([]Source{src("e.md", short+"\n\n"+mid)}, Options{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, mid, docs[0].Content)
}

func TestSegment_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"title", "---\ntitle: 제목\nnav: 메뉴\n---\nbody text long enough", "제목"},
		{"nav", "---\nnav: 메뉴\n---\nbody text long enough", "메뉴"},
		{"file name", "body text long enough", "getting-started"},
		{"numeric title", "---\ntitle: 2024\n---\nbody", "2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := Segment([]Source{src("getting-started.mdx", tt.body)}, Options{RoutePrefix: "/docs"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, docs[0].Title)
			assert.Equal(t, "/docs/getting-started", docs[0].URL)
		})
	}
}

func TestSegment_FunctionNameAnchor(t *testing.T) {
	body := "## useSearch 훅\n\n" +
		"## 기타\n\n" +
		"검색을 시작하려면 usesearch(options) 를 호출하면 됩니다.\n\n" +
		"어느 제목과도 관계 없는 긴 문단이 여기에 있습니다."
	docs, err := Segment([]Source{src("hooks.mdx", body)}, Options{})
	require.NoError(t, err)

	byContent := map[string]models.SearchDocument{}
	for _, d := range docs[1:] {
		byContent[d.Content] = d
	}
	assert.Equal(t, "usesearch-훅", byContent["검색을 시작하려면 usesearch(options) 를 호출하면 됩니다."].AnchorID)
	assert.Empty(t, byContent["어느 제목과도 관계 없는 긴 문단이 여기에 있습니다."].AnchorID)
}

func TestSegment_FirstHeadingWins(t *testing.T) {
	body := "## 설치\n\n## 설정\n\n설치 후에 설정 파일을 열어 값을 채워 넣으세요."
	docs, err := Segment([]Source{src("a.md", body)}, Options{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "설치", docs[1].AnchorID)
}

func TestSegment_AnchorsAreHeadingSlugs(t *testing.T) {
	docs, err := Segment([]Source{src("install.mdx", installGuide)}, Options{})
	require.NoError(t, err)
	valid := map[string]bool{"installation": true, "configuration": true}
	for _, d := range docs {
		if d.AnchorID != "" {
			assert.True(t, valid[d.AnchorID], "unexpected anchor %q", d.AnchorID)
		}
	}
}

func TestSegment_Idempotent(t *testing.T) {
	sources := []Source{src("a.mdx", installGuide), src("b.md", "# B\n\nsecond file with some text in it")}
	first, err := Segment(sources, Options{RoutePrefix: "/docs"})
	require.NoError(t, err)
	second, err := Segment(sources, Options{RoutePrefix: "/docs"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSegment_IDsUnique(t *testing.T) {
	docs, err := Segment([]Source{src("a.mdx", installGuide), src("a.md", installGuide)}, Options{})
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, d := range docs {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestSegment_MalformedFrontMatter(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "---\ntitle: [unclosed\n---\nbody"},
		{"no closing fence", "---\ntitle: x\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Segment([]Source{src("broken.mdx", tt.body)}, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFrontMatter))
			assert.Contains(t, err.Error(), "broken.mdx")
		})
	}
}

func TestSegment_CRLF(t *testing.T) {
	body := "---\r\ntitle: 윈도우\r\n---\r\n# Setup\r\n\r\nsetup works the same with CRLF endings"
	docs, err := Segment([]Source{src("w.md", body)}, Options{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "윈도우", docs[0].Title)
	assert.Equal(t, "setup", docs[1].AnchorID)
}

func TestSegment_HTMLSource(t *testing.T) {
	page := `<html><head><title>HTML 문서</title></head><body><h2>Usage</h2><p>Usage notes for the html converted page.</p></body></html>`
	docs, err := Segment([]Source{src("page.html", page)}, Options{RoutePrefix: "/docs"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "HTML 문서", docs[0].Title)
	assert.Equal(t, "/docs/page", docs[0].URL)
	assert.Equal(t, "usage", docs[1].AnchorID)
}

func TestSummarize(t *testing.T) {
	sources := []Source{src("install.mdx", installGuide)}
	docs, err := Segment(sources, Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Sources: 1, Documents: 3, Paragraphs: 2, Anchored: 2}, Summarize(sources, docs))
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.mdx":     "# B",
		"a.md":      "# A",
		"meta.json": `{"a":"A"}`,
		"notes.txt": "ignored",
		"page.html": "<html></html>",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0o755))

	sources, err := ReadSources(context.Background(), dir, ReadOptions{Extensions: []string{".mdx", ".md"}, Workers: 2})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a.md", sources[0].Name)
	assert.Equal(t, "# A", sources[0].Body)
	assert.Equal(t, "b.mdx", sources[1].Name)

	sources, err = ReadSources(context.Background(), dir, ReadOptions{Extensions: []string{".mdx", ".md"}, IncludeHTML: true})
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "page.html", sources[2].Name)
	assert.True(t, sources[2].IsHTML())
}

func TestReadSources_MissingDir(t *testing.T) {
	_, err := ReadSources(context.Background(), filepath.Join(t.TempDir(), "missing"), ReadOptions{Extensions: []string{".md"}})
	require.Error(t, err)
}

func TestReadSources_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadSources(ctx, dir, ReadOptions{Extensions: []string{".md"}})
	assert.ErrorIs(t, err, context.Canceled)
}
