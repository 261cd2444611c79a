package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/ko-docsearch/internal/pipeline"
)

var (
	buildDir       string
	buildNoPublish bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the search index artifact",
	Long: `Read the documentation tree, split every page into search documents
and write the index artifact. Any unreadable file or malformed front-matter
aborts the build without touching the existing artifact.

When storage or elasticsearch are configured the artifact is also published
there; failures of those sinks are reported but only fail the build with
publish.strict.

Examples:
  # Build from the configured source directory
  ko-docsearch build

  # Build a different tree into a different artifact
  ko-docsearch build --dir docs/content --artifact dist/search-data.json

  # Local build only
  ko-docsearch build --no-publish`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildDir, "dir", "", "Documentation directory (overrides source.dir)")
	buildCmd.Flags().BoolVar(&buildNoPublish, "no-publish", false, "Write the artifact only, skip storage and elasticsearch")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if buildDir != "" {
		cfg.Source.Dir = buildDir
	}
	slog.Debug("build command starting", "dir", cfg.Source.Dir, "artifact", cfg.Index.Path)

	var opts []pipeline.Option
	if !buildNoPublish && cfg.Storage.Enabled() {
		storageClient, err := newStorageClient(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithStorage(storageClient))
	}
	if !buildNoPublish && cfg.Elasticsearch.Enabled() {
		esClient, err := newESClient(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithMirror(esClient))
	}

	p, err := pipeline.New(pipeline.Config{
		SourceDir:    cfg.Source.Dir,
		Extensions:   cfg.Source.Extensions,
		IncludeHTML:  cfg.Source.IncludeHTML,
		Workers:      cfg.Source.Workers,
		RoutePrefix:  cfg.Source.RoutePrefix,
		ArtifactPath: cfg.Index.Path,
		ArtifactKey:  cfg.Storage.Key,
		Strict:       cfg.Publish.Strict,
	}, opts...)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if result != nil {
		fmt.Printf("Search index written to %s\n", cfg.Index.Path)
		fmt.Printf("  Sources:    %d\n", result.Sources)
		fmt.Printf("  Documents:  %d\n", result.Documents)
		fmt.Printf("  Paragraphs: %d (%d anchored)\n", result.Paragraphs, result.Anchored)
		if result.Published {
			fmt.Printf("  Published:  s3://%s/%s\n", cfg.Storage.Bucket, cfg.Storage.Key)
		}
		if result.Mirrored > 0 {
			fmt.Printf("  Mirrored:   %d documents to %s\n", result.Mirrored, cfg.Elasticsearch.Index)
		}
		fmt.Printf("  Duration:   %v\n", result.Duration)

		if len(result.Errors) > 0 {
			fmt.Printf("  Warnings:   %d\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("    - %v\n", e)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
