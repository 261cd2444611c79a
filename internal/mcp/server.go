package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/ko-docsearch/internal/search"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name         string
	Version      string
	Limit        int
	SuggestLimit int
}

// IndexProvider hands out the current search index. A search.Session
// satisfies it, so reloads are picked up between tool calls.
type IndexProvider interface {
	Index() (*search.Index, error)
}

// Server exposes the in-process search engine as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	indexes   IndexProvider
	config    Config
}

// NewServer creates a new MCP server with search tools.
func NewServer(config Config, indexes IndexProvider) (*Server, error) {
	if indexes == nil {
		return nil, fmt.Errorf("index provider is required")
	}
	if config.Limit <= 0 {
		config.Limit = search.DefaultLimit
	}
	if config.SuggestLimit <= 0 {
		config.SuggestLimit = search.DefaultSuggestLimit
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer: mcpServer,
		indexes:   indexes,
		config:    config,
	}

	// Register search_documents tool
	searchTool := mcp.NewTool("search_documents",
		mcp.WithDescription("Search the documentation. Understands Korean initial-consonant queries (ㄱㅇㄷ) and partially typed syllables. Returns at most one hit per page, best first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results to return (default: %d)", config.Limit)),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	// Register suggest_titles tool
	suggestTool := mcp.NewTool("suggest_titles",
		mcp.WithDescription("Suggest page titles completing a partially typed query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Partial query"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of titles to return (default: %d)", config.SuggestLimit)),
		),
	)
	mcpServer.AddTool(suggestTool, s.suggestHandler)

	// Register get_document tool
	getDocTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get a specific search document by ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Document ID to retrieve, e.g. guide.mdx-main"),
		),
	)
	mcpServer.AddTool(getDocTool, s.getDocumentHandler)

	// Register index_stats tool
	statsTool := mcp.NewTool("index_stats",
		mcp.WithDescription("Report document and title counts of the loaded index"),
	)
	mcpServer.AddTool(statsTool, s.statsHandler)

	return s, nil
}

// Hit is the tool representation of a search result.
type Hit struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Href    string  `json:"href"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

func toHit(r models.SearchResult) Hit {
	snippet := r.HighlightedText()
	if r.Highlight != nil {
		snippet = models.Mark(snippet, r.Highlight.Spans, "<mark>", "</mark>")
	}
	return Hit{
		ID:      r.ID,
		Title:   r.Title,
		Href:    r.Href(),
		Section: r.Section,
		Score:   r.Score,
		Snippet: snippet,
	}
}

// searchHandler handles the search_documents tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", s.config.Limit)

	hits, err := s.handleSearch(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(hits)
}

// suggestHandler handles the suggest_titles tool call.
func (s *Server) suggestHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", s.config.SuggestLimit)

	titles, err := s.handleSuggest(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("suggest failed: %v", err)), nil
	}
	return jsonResult(titles)
}

// getDocumentHandler handles the get_document tool call.
func (s *Server) getDocumentHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	doc, err := s.handleGetDocument(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get document failed: %v", err)), nil
	}

	if doc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", id)), nil
	}
	return jsonResult(doc)
}

// statsHandler handles the index_stats tool call.
func (s *Server) statsHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ix, err := s.indexes.Index()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(ix.Stats())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// handleSearch searches the current index.
func (s *Server) handleSearch(_ context.Context, query string, limit int) ([]Hit, error) {
	ix, err := s.indexes.Index()
	if err != nil {
		return nil, err
	}
	results := ix.Search(query, limit)
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = toHit(r)
	}
	return hits, nil
}

// handleSuggest completes a partial query into titles.
func (s *Server) handleSuggest(_ context.Context, query string, limit int) ([]string, error) {
	ix, err := s.indexes.Index()
	if err != nil {
		return nil, err
	}
	titles := ix.Suggest(query, limit)
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}

// handleGetDocument retrieves a document by ID; nil when absent.
func (s *Server) handleGetDocument(_ context.Context, id string) (*models.SearchDocument, error) {
	ix, err := s.indexes.Index()
	if err != nil {
		return nil, err
	}
	doc, ok := ix.Document(id)
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
