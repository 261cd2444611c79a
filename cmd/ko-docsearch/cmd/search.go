package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the documentation index",
	Long: `Search the documentation index. Queries made only of Korean initial
consonants match titles by their initials, other queries match titles by
substring and then the full text.

Examples:
  # Basic search
  ko-docsearch search "엔드포인트"

  # Initial-consonant search
  ko-docsearch search "ㄱㅇㄷ"

  # JSON output for scripting
  ko-docsearch search "api" --limit 5 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (default search.limit)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}

	ix, err := loadIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	results := ix.Search(args[0], limit)

	if searchFormat == "json" {
		return printJSON(cmd.OutOrStdout(), results)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		return nil
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}
