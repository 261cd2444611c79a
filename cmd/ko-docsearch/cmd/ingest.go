package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/ko-docsearch/internal/ingestion"
)

var (
	ingestKey  string
	ingestList string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Mirror a published artifact into Elasticsearch",
	Long: `Mirror an index artifact that was already published to object storage
into Elasticsearch, without rebuilding it from the sources.

Examples:
  # Mirror the configured artifact key
  ko-docsearch ingest

  # Mirror a specific artifact
  ko-docsearch ingest --key site/v2/search-data.json

  # List published artifacts under a prefix
  ko-docsearch ingest --list site/`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestKey, "key", "", "Artifact key to ingest (default storage.key)")
	ingestCmd.Flags().StringVar(&ingestList, "list", "", "List artifact keys under this prefix and exit")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if ingestKey == "" {
		ingestKey = cfg.Storage.Key
	}
	slog.Debug("ingest command starting", "key", ingestKey)

	if !cfg.Storage.Enabled() {
		return fmt.Errorf("storage not configured - check config file")
	}

	storageClient, err := newStorageClient(cfg)
	if err != nil {
		return err
	}
	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}

	engine := ingestion.New(storageClient, esClient)

	if cmd.Flags().Changed("list") {
		keys, err := engine.List(ctx, ingestList)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	if !cfg.Elasticsearch.Enabled() {
		return fmt.Errorf("elasticsearch not configured - check config file")
	}

	if !esClient.Ping(ctx) {
		return fmt.Errorf("elasticsearch not reachable at %v", cfg.Elasticsearch.Addresses)
	}

	fmt.Printf("Ingesting: s3://%s/%s\n", storageClient.Bucket(), ingestKey)
	if m, err := storageClient.GetManifest(ctx, ingestKey); err != nil {
		slog.Debug("no manifest for artifact", "key", ingestKey, "error", err)
	} else {
		fmt.Printf("  Built: %s from %d sources\n", m.Timestamp, len(m.Sources))
	}

	result, err := engine.Ingest(ctx, ingestKey)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Docs indexed: %d\n", result.DocsIndexed)
	if result.DocsFailed > 0 {
		fmt.Printf("  Docs failed:  %d\n", result.DocsFailed)
	}
	if len(result.Unverified) > 0 {
		fmt.Printf("  Not readable back: %v\n", result.Unverified)
	}
	fmt.Printf("  Titles: %d\n", result.Stats.UniqueTitles)
	fmt.Printf("  Duration: %v\n", result.Duration)

	if n, err := esClient.Count(ctx); err == nil {
		fmt.Printf("  Index %s now holds %d documents\n", cfg.Elasticsearch.Index, n)
	}

	return nil
}
