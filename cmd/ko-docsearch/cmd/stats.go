package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	statsFormat    string
	statsDocuments bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long: `Load the index artifact and print its statistics.

Examples:
  ko-docsearch stats
  ko-docsearch stats --format json

  # Also list every document id with its link
  ko-docsearch stats --documents`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "Output format: text or json")
	statsCmd.Flags().BoolVar(&statsDocuments, "documents", false, "List indexed documents")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ix, err := loadIndex(ctx, GetConfig())
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	stats := ix.Stats()
	if statsFormat == "json" {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Documents: %d\n", stats.TotalDocuments)
	fmt.Fprintf(cmd.OutOrStdout(), "Titles:    %d\n", stats.UniqueTitles)
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed:   %d\n", stats.IndexedDocuments)

	if statsDocuments {
		fmt.Fprintln(cmd.OutOrStdout())
		for _, d := range ix.Documents() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.ID, d.Href())
		}
	}
	return nil
}
