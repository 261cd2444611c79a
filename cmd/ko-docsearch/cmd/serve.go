package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mfenderov/ko-docsearch/internal/artifact"
	"github.com/mfenderov/ko-docsearch/internal/mcp"
	"github.com/mfenderov/ko-docsearch/internal/search"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server backed by the in-process search index.

The server communicates via stdio and provides four tools:
  - search_documents: Search the documentation
  - suggest_titles: Suggest titles for a partial query
  - get_document: Get a search document by ID
  - index_stats: Show index statistics

Examples:
  ko-docsearch serve

  # Reload the index whenever the artifact is rebuilt
  ko-docsearch serve --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the index when the local artifact changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := GetConfig()
	load := documentLoader(cfg)

	session := search.NewSession(search.SessionOptions{
		Debounce:     cfg.Search.Debounce,
		Limit:        cfg.Search.Limit,
		SuggestLimit: cfg.Search.SuggestLimit,
	})
	defer session.Close()

	// A failed load leaves the tools answering with the load error until the
	// next reload succeeds.
	if err := session.Load(ctx, load); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	if serveWatch {
		if cfg.Index.BaseURL != "" {
			return fmt.Errorf("--watch requires a local artifact, index.base_url is set")
		}
		go func() {
			err := artifact.Watch(ctx, cfg.Index.Path, func() {
				slog.Info("reloading search index", "path", cfg.Index.Path)
				session.Load(ctx, load)
			})
			if err != nil {
				slog.Error("artifact watch stopped", "error", err)
			}
		}()
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:         cfg.MCP.Name,
		Version:      cfg.MCP.Version,
		Limit:        cfg.Search.Limit,
		SuggestLimit: cfg.Search.SuggestLimit,
	}, session)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
