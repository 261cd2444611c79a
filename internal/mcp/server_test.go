package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfenderov/ko-docsearch/internal/search"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

type staticIndex struct {
	ix  *search.Index
	err error
}

func (s staticIndex) Index() (*search.Index, error) { return s.ix, s.err }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ix, err := search.Build([]models.SearchDocument{
		{ID: "guide.mdx-main", Title: "설치 가이드", Content: "설치 방법과 사용법", URL: "/docs/guide"},
		{ID: "guide.mdx-1", Title: "설치 가이드", Content: "패키지를 설치하려면 명령을 실행하세요", URL: "/docs/guide", AnchorID: "installation"},
		{ID: "api.mdx-main", Title: "API 레퍼런스", Content: "엔드포인트 목록", URL: "/docs/api", Section: "reference"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	s, err := NewServer(Config{Name: "ko-docsearch", Version: "1.0.0"}, staticIndex{ix: ix})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("result has %d content items, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result content is %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestServer_Creation(t *testing.T) {
	s := newTestServer(t)
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
	if s.config.Limit != search.DefaultLimit {
		t.Errorf("config.Limit = %d, want %d", s.config.Limit, search.DefaultLimit)
	}

	if _, err := NewServer(Config{}, nil); err == nil {
		t.Error("NewServer() without index provider should fail")
	}
}

func TestServer_HandleSearch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	hits, err := s.handleSearch(ctx, "ㅅㅊ", 10)
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("handleSearch() returned %d hits, want 1", len(hits))
	}
	if hits[0].ID != "guide.mdx-main" {
		t.Errorf("hits[0].ID = %q, want %q", hits[0].ID, "guide.mdx-main")
	}
	if hits[0].Snippet != "<mark>설치</mark> 가이드" {
		t.Errorf("hits[0].Snippet = %q", hits[0].Snippet)
	}
}

func TestServer_SearchTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.searchHandler(context.Background(), callRequest("search_documents", map[string]any{"query": "패키지를"}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("searchHandler() returned tool error: %s", resultText(t, res))
	}

	var hits []Hit
	if err := json.Unmarshal([]byte(resultText(t, res)), &hits); err != nil {
		t.Fatalf("unmarshal hits: %v", err)
	}
	if len(hits) != 1 || hits[0].Href != "/docs/guide#installation" {
		t.Errorf("hits = %+v, want one hit for /docs/guide#installation", hits)
	}
	if !strings.Contains(hits[0].Snippet, "<mark>패키지를</mark>") {
		t.Errorf("Snippet = %q, want marked query", hits[0].Snippet)
	}

	res, _ = s.searchHandler(context.Background(), callRequest("search_documents", map[string]any{}))
	if !res.IsError {
		t.Error("searchHandler() without query should return a tool error")
	}
}

func TestServer_SuggestTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.suggestHandler(context.Background(), callRequest("suggest_titles", map[string]any{"query": "가이", "limit": 3}))
	if err != nil {
		t.Fatalf("suggestHandler() error = %v", err)
	}
	if got := resultText(t, res); got != `["설치 가이드"]` {
		t.Errorf("suggestHandler() = %s", got)
	}

	res, _ = s.suggestHandler(context.Background(), callRequest("suggest_titles", map[string]any{"query": "없음"}))
	if got := resultText(t, res); got != `[]` {
		t.Errorf("suggestHandler(no match) = %s, want []", got)
	}
}

func TestServer_GetDocumentTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	doc, err := s.handleGetDocument(ctx, "api.mdx-main")
	if err != nil {
		t.Fatalf("handleGetDocument() error = %v", err)
	}
	if doc == nil || doc.Section != "reference" {
		t.Fatalf("handleGetDocument() = %+v", doc)
	}

	res, err := s.getDocumentHandler(ctx, callRequest("get_document", map[string]any{"id": "missing"}))
	if err != nil {
		t.Fatalf("getDocumentHandler() error = %v", err)
	}
	if !res.IsError {
		t.Error("getDocumentHandler() for missing id should return a tool error")
	}
}

func TestServer_StatsTool(t *testing.T) {
	s := newTestServer(t)

	res, err := s.statsHandler(context.Background(), callRequest("index_stats", nil))
	if err != nil {
		t.Fatalf("statsHandler() error = %v", err)
	}
	want := `{"totalDocuments":3,"uniqueTitles":2,"indexedDocuments":3}`
	if got := resultText(t, res); got != want {
		t.Errorf("statsHandler() = %s, want %s", got, want)
	}
}

func TestServer_NotReady(t *testing.T) {
	s, err := NewServer(Config{Name: "ko-docsearch"}, staticIndex{err: search.ErrNotReady})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	if _, err := s.handleSearch(context.Background(), "설치", 10); !errors.Is(err, search.ErrNotReady) {
		t.Errorf("handleSearch() error = %v, want ErrNotReady", err)
	}
	res, _ := s.statsHandler(context.Background(), callRequest("index_stats", nil))
	if !res.IsError {
		t.Error("statsHandler() should return a tool error before load")
	}
}
