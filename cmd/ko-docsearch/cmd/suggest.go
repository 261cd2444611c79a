package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Suggest document titles for a partial query",
	Long: `Print the titles that match a partial query, for example one whose
last syllable is still being typed.

Examples:
  ko-docsearch suggest "엔드포"
  ko-docsearch suggest "ㅇㄷㅍ" --limit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 0, "Maximum number of titles (default search.suggest_limit)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	limit := suggestLimit
	if limit <= 0 {
		limit = cfg.Search.SuggestLimit
	}

	ix, err := loadIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	for _, title := range ix.Suggest(args[0], limit) {
		fmt.Fprintln(cmd.OutOrStdout(), title)
	}
	return nil
}
