package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mfenderov/ko-docsearch/internal/artifact"
	"github.com/mfenderov/ko-docsearch/internal/config"
	"github.com/mfenderov/ko-docsearch/internal/elasticsearch"
	"github.com/mfenderov/ko-docsearch/internal/search"
	"github.com/mfenderov/ko-docsearch/internal/storage"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

const fetchTimeout = 30 * time.Second

func newStorageClient(cfg config.Config) (*storage.Client, error) {
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

func newESClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

// documentLoader reads the artifact over HTTP when a base url is
// configured, else from the local artifact path.
func documentLoader(cfg config.Config) search.LoadFunc {
	if cfg.Index.BaseURL != "" {
		client := &http.Client{Timeout: fetchTimeout}
		return func(ctx context.Context) ([]models.SearchDocument, error) {
			return artifact.Fetch(ctx, client, cfg.Index.BaseURL, cfg.Index.Name)
		}
	}
	return func(context.Context) ([]models.SearchDocument, error) {
		return artifact.LoadFile(cfg.Index.Path)
	}
}

// loadIndex loads the artifact and builds a search index from it.
func loadIndex(ctx context.Context, cfg config.Config) (*search.Index, error) {
	docs, err := documentLoader(cfg)(ctx)
	if err != nil {
		return nil, err
	}
	return search.Build(docs)
}
