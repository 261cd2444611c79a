package fulltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fields = []string{"title", "content"}

func doc(id, title, content string) Document {
	return Document{
		ID:     id,
		Fields: map[string]string{"title": title, "content": content},
		Stored: map[string]string{"id": id, "title": title},
	}
}

func ids(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func sampleIndex() *Index {
	return Build(fields, []Document{
		doc("start", "Getting Started", "install the package with npm"),
		doc("config", "Configuration", "edit config values before the first run"),
		doc("guide", "가이드", "ㄱㅇㄷ 초성 검색을 지원하는 한국어 가이드 문서"),
	})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, world!", []string{"Hello", "world"}},
		{"API-레퍼런스\n가이드", []string{"API", "레퍼런스", "가이드"}},
		{"  \n\r ", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), "Tokenize(%q)", tt.in)
	}
}

func TestSearch_Exact(t *testing.T) {
	idx := sampleIndex()
	hits := idx.Search("install", DefaultSearchOptions())
	require.Len(t, hits, 1)
	assert.Equal(t, "start", hits[0].ID)
	assert.Equal(t, "Getting Started", hits[0].Stored["title"])
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"start"}, ids(sampleIndex().Search("GETTING", DefaultSearchOptions())))
}

func TestSearch_Prefix(t *testing.T) {
	idx := sampleIndex()
	assert.Equal(t, []string{"config"}, ids(idx.Search("conf", DefaultSearchOptions())))
	assert.Empty(t, idx.Search("conf", SearchOptions{Combine: And}))
}

func TestSearch_Fuzzy(t *testing.T) {
	idx := sampleIndex()
	assert.Equal(t, []string{"start"}, ids(idx.Search("pakage", DefaultSearchOptions())))
	assert.Empty(t, idx.Search("pakage", SearchOptions{Prefix: true}))
}

func TestSearch_ExactOutranksPrefix(t *testing.T) {
	idx := Build(fields, []Document{
		doc("long", "a", "configuration"),
		doc("short", "b", "config"),
	})
	assert.Equal(t, []string{"short", "long"}, ids(idx.Search("config", DefaultSearchOptions())))
}

func TestSearch_Combine(t *testing.T) {
	idx := sampleIndex()
	assert.Empty(t, idx.Search("install edit", DefaultSearchOptions()))

	opts := DefaultSearchOptions()
	opts.Combine = Or
	assert.ElementsMatch(t, []string{"start", "config"}, ids(idx.Search("install edit", opts)))

	both := idx.Search("install package", DefaultSearchOptions())
	require.Len(t, both, 1)
	assert.Equal(t, "start", both[0].ID)

	single := idx.Search("install", DefaultSearchOptions())
	assert.Greater(t, both[0].Score, single[0].Score)
}

func TestSearch_Boost(t *testing.T) {
	idx := Build(fields, []Document{
		doc("in-title", "search", "other words here"),
		doc("in-content", "other", "search words here"),
	})

	opts := DefaultSearchOptions()
	opts.Boost = map[string]float64{"title": 3}
	hits := idx.Search("search", opts)
	require.Len(t, hits, 2)
	assert.Equal(t, "in-title", hits[0].ID)
	assert.InDelta(t, hits[0].Score, 3*hits[1].Score, 1e-9)

	opts.Boost = map[string]float64{"content": 3}
	assert.Equal(t, []string{"in-content", "in-title"}, ids(idx.Search("search", opts)))
}

func TestSearch_ChosungTokens(t *testing.T) {
	assert.Equal(t, []string{"guide"}, ids(sampleIndex().Search("ㄱㅇㄷ", DefaultSearchOptions())))
}

func TestSearch_NoTerms(t *testing.T) {
	idx := sampleIndex()
	assert.Empty(t, idx.Search("", DefaultSearchOptions()))
	assert.Empty(t, idx.Search("?!", DefaultSearchOptions()))
	assert.Empty(t, Build(fields, nil).Search("install", DefaultSearchOptions()))
}

func TestSearch_ScoresDescending(t *testing.T) {
	opts := DefaultSearchOptions()
	opts.Combine = Or
	hits := sampleIndex().Search("the 가이드 config", opts)
	require.NotEmpty(t, hits)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestDocument(t *testing.T) {
	idx := sampleIndex()
	assert.Equal(t, 3, idx.DocumentCount())
	assert.Positive(t, idx.TermCount())

	d, ok := idx.Document("config")
	require.True(t, ok)
	assert.Equal(t, "Configuration", d.Fields["title"])

	_, ok = idx.Document("missing")
	assert.False(t, ok)
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b   string
		limit  int
		want   int
		wantOK bool
	}{
		{"kitten", "sitting", 3, 3, true},
		{"abc", "abc", 1, 0, true},
		{"abc", "abcdef", 2, 0, false},
		{"가이드", "가이더", 1, 1, true},
		{"kitten", "sitting", 2, 0, false},
	}
	for _, tt := range tests {
		got, ok := editDistance(tt.a, tt.b, tt.limit)
		assert.Equal(t, tt.wantOK, ok, "editDistance(%q, %q, %d)", tt.a, tt.b, tt.limit)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "editDistance(%q, %q, %d)", tt.a, tt.b, tt.limit)
		}
	}
}

func TestFuzzyDistance(t *testing.T) {
	tests := []struct {
		n     int
		fuzzy float64
		want  int
	}{
		{5, 0.2, 1},
		{3, 0.3, 1},
		{2, 0.2, 0},
		{40, 0.5, 6},
		{3, 2, 2},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fuzzyDistance(tt.n, tt.fuzzy), "fuzzyDistance(%d, %v)", tt.n, tt.fuzzy)
	}
}
