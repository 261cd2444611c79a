// Package elasticsearch mirrors the published document set into an
// Elasticsearch index so other tools can browse it. Query answering stays
// in-process; this package only writes and inspects the mirror.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client wraps the Elasticsearch client with mirror operations.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping mirrors the search document shape. The cjk analyzer bigrams
// Hangul so the mirror stays browsable for Korean text.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"title": { "type": "text", "analyzer": "cjk", "fields": { "raw": { "type": "keyword" } } },
			"content": { "type": "text", "analyzer": "cjk" },
			"url": { "type": "keyword" },
			"section": { "type": "keyword" },
			"anchorId": { "type": "keyword" }
		}
	}
}`

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	// Check if index exists
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		// Index already exists
		return nil
	}

	// Create index
	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// DeleteIndex removes the index.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// MirrorStats reports the outcome of a Mirror run.
type MirrorStats struct {
	Indexed int
	Failed  int
}

// Mirror replaces the index contents with docs. Documents are sent through
// the bulk indexer; per-document failures are counted and logged, not
// returned.
func (c *Client) Mirror(ctx context.Context, docs []models.SearchDocument) (MirrorStats, error) {
	if err := c.DeleteIndex(ctx); err != nil {
		return MirrorStats{}, fmt.Errorf("failed to reset index: %w", err)
	}
	if err := c.CreateIndex(ctx); err != nil {
		return MirrorStats{}, err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     c.es,
		Index:      c.index,
		NumWorkers: max(1, runtime.NumCPU()/2),
		Refresh:    "true",
	})
	if err != nil {
		return MirrorStats{}, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	onFailure := func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
		if err == nil {
			err = fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason)
		}
		slog.Warn("failed to mirror document", "id", item.DocumentID, "error", err)
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			_ = bi.Close(ctx)
			return MirrorStats{}, fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(data),
			OnFailure:  onFailure,
		})
		if err != nil {
			_ = bi.Close(ctx)
			return MirrorStats{}, fmt.Errorf("failed to queue document %s: %w", doc.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return MirrorStats{}, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}

	st := bi.Stats()
	stats := MirrorStats{Indexed: int(st.NumIndexed), Failed: int(st.NumFailed)}
	slog.Info("mirrored documents to elasticsearch",
		"index", c.index,
		"indexed", stats.Indexed,
		"failed", stats.Failed)
	if stats.Failed > 0 && stats.Indexed == 0 {
		return stats, fmt.Errorf("no documents mirrored: %w", firstErr)
	}
	return stats, nil
}

// Refresh forces an index refresh (useful for testing).
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// countResponse represents ES count response structure.
type countResponse struct {
	Count int `json:"count"`
}

// Count returns the number of mirrored documents.
func (c *Client) Count(ctx context.Context) (int, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(c.index),
	)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var cr countResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return cr.Count, nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool                  `json:"found"`
	Source models.SearchDocument `json:"_source"`
}

// GetDocument retrieves a mirrored document by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.SearchDocument, error) {
	res, err := c.es.Get(
		c.index,
		id,
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return nil, nil
	}

	return &gr.Source, nil
}
