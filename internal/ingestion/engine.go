package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/ko-docsearch/internal/elasticsearch"
	"github.com/mfenderov/ko-docsearch/internal/search"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// ArtifactSource lists and downloads published artifacts.
type ArtifactSource interface {
	ListArtifacts(ctx context.Context, prefix string) ([]string, error)
	GetArtifact(ctx context.Context, key string) ([]models.SearchDocument, error)
}

// Mirror receives the documents of an artifact and reads them back.
type Mirror interface {
	Mirror(ctx context.Context, docs []models.SearchDocument) (elasticsearch.MirrorStats, error)
	GetDocument(ctx context.Context, id string) (*models.SearchDocument, error)
}

// verifySample is how many mirrored documents are read back after a run.
const verifySample = 3

// Result holds ingestion execution results.
type Result struct {
	Key         string
	DocsIndexed int
	DocsFailed  int
	// Unverified lists sampled ids that could not be read back unchanged.
	Unverified  []string
	Stats       search.Stats
	Duration    time.Duration
}

// Engine mirrors an already published artifact from object storage into
// Elasticsearch without rebuilding it from sources.
type Engine struct {
	source ArtifactSource
	mirror Mirror
}

// New creates a new ingestion engine.
func New(source ArtifactSource, mirror Mirror) *Engine {
	return &Engine{
		source: source,
		mirror: mirror,
	}
}

// Ingest mirrors the artifact stored under key. The artifact must build into
// a valid search index; a broken artifact is never mirrored.
func (e *Engine) Ingest(ctx context.Context, key string) (*Result, error) {
	start := time.Now()
	result := &Result{Key: key}

	slog.Info("starting ingestion", "key", key)

	docs, err := e.source.GetArtifact(ctx, key)
	if err != nil {
		return nil, err
	}

	ix, err := search.Build(docs)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", key, err)
	}
	result.Stats = ix.Stats()

	ms, err := e.mirror.Mirror(ctx, docs)
	if err != nil {
		return nil, err
	}
	result.DocsIndexed = ms.Indexed
	result.DocsFailed = ms.Failed

	unverified, err := e.verify(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify mirror: %w", err)
	}
	result.Unverified = unverified
	if len(unverified) > 0 {
		slog.Warn("mirrored documents missing or changed", "key", key, "ids", unverified)
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"key", key,
		"docs_indexed", result.DocsIndexed,
		"docs_failed", result.DocsFailed,
		"duration", result.Duration)

	return result, nil
}

// verify reads back the first, middle and last documents of docs and
// returns the ids whose mirrored copy is missing or differs.
func (e *Engine) verify(ctx context.Context, docs []models.SearchDocument) ([]string, error) {
	var unverified []string
	for _, doc := range sample(docs, verifySample) {
		got, err := e.mirror.GetDocument(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		if got == nil || *got != doc {
			unverified = append(unverified, doc.ID)
		}
	}
	return unverified, nil
}

// sample picks n documents spread evenly over docs, ends included.
func sample(docs []models.SearchDocument, n int) []models.SearchDocument {
	if len(docs) <= n {
		return docs
	}
	out := make([]models.SearchDocument, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, docs[i*(len(docs)-1)/(n-1)])
	}
	return out
}

// List returns the artifact keys under prefix.
func (e *Engine) List(ctx context.Context, prefix string) ([]string, error) {
	return e.source.ListArtifacts(ctx, prefix)
}
