// Package pipeline builds and publishes the search index artifact: read the
// documentation tree, segment it into search documents, write the artifact
// and push it to the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/ko-docsearch/internal/artifact"
	"github.com/mfenderov/ko-docsearch/internal/elasticsearch"
	"github.com/mfenderov/ko-docsearch/internal/segmenter"
	"github.com/mfenderov/ko-docsearch/internal/storage"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// Config holds pipeline configuration.
type Config struct {
	SourceDir    string
	Extensions   []string
	IncludeHTML  bool
	Workers      int
	RoutePrefix  string
	ArtifactPath string
	// ArtifactKey is the object key used when publishing to storage.
	ArtifactKey string
	// Strict turns sink failures into a failed run.
	Strict bool
}

// ArtifactStore receives the published artifact.
type ArtifactStore interface {
	EnsureBucket(ctx context.Context) error
	PutArtifact(ctx context.Context, key string, docs []models.SearchDocument) error
	PutManifest(ctx context.Context, m storage.Manifest) error
}

// Mirror receives a copy of the document set.
type Mirror interface {
	Mirror(ctx context.Context, docs []models.SearchDocument) (elasticsearch.MirrorStats, error)
}

// Result holds pipeline execution results.
type Result struct {
	Sources    int
	Documents  int
	Paragraphs int
	Anchored   int
	Mirrored   int
	Published  bool
	Duration   time.Duration
	Errors     []error
}

// Option configures optional sinks.
type Option func(*Pipeline)

// WithStorage publishes the artifact to store.
func WithStorage(store ArtifactStore) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithMirror copies the documents to m.
func WithMirror(m Mirror) Option {
	return func(p *Pipeline) { p.mirror = m }
}

// Pipeline orchestrates reading, segmenting and publishing.
type Pipeline struct {
	config Config
	store  ArtifactStore // nil if storage is disabled
	mirror Mirror        // nil if elasticsearch is disabled
}

// New creates a new Pipeline with the given configuration.
func New(config Config, opts ...Option) (*Pipeline, error) {
	if config.SourceDir == "" {
		return nil, errors.New("source directory is required")
	}
	if config.ArtifactPath == "" {
		return nil, errors.New("artifact path is required")
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".mdx", ".md"}
	}
	if config.ArtifactKey == "" {
		config.ArtifactKey = artifact.DefaultName
	}

	p := &Pipeline{config: config}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Build reads and segments the sources without writing anything.
func (p *Pipeline) Build(ctx context.Context) ([]segmenter.Source, []models.SearchDocument, error) {
	sources, err := segmenter.ReadSources(ctx, p.config.SourceDir, segmenter.ReadOptions{
		Extensions:  p.config.Extensions,
		IncludeHTML: p.config.IncludeHTML,
		Workers:     p.config.Workers,
	})
	if err != nil {
		return nil, nil, err
	}

	docs, err := segmenter.Segment(sources, segmenter.Options{RoutePrefix: p.config.RoutePrefix})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to segment sources: %w", err)
	}
	return sources, docs, nil
}

// Run executes the full pipeline. Any read or segmentation failure aborts
// before the artifact is touched. Sink failures are collected in
// Result.Errors and only fail the run in strict mode.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	sources, docs, err := p.Build(ctx)
	if err != nil {
		return nil, err
	}

	stats := segmenter.Summarize(sources, docs)
	result := &Result{
		Sources:    stats.Sources,
		Documents:  stats.Documents,
		Paragraphs: stats.Paragraphs,
		Anchored:   stats.Anchored,
	}

	if err := artifact.Write(p.config.ArtifactPath, docs); err != nil {
		return nil, err
	}
	slog.Info("search index built",
		"path", p.config.ArtifactPath,
		"sources", result.Sources,
		"documents", result.Documents,
		"anchored", result.Anchored)

	if p.store != nil {
		if err := p.publish(ctx, sources, docs); err != nil {
			slog.Warn("failed to publish artifact", "key", p.config.ArtifactKey, "error", err)
			result.Errors = append(result.Errors, err)
		} else {
			result.Published = true
		}
	}

	if p.mirror != nil {
		ms, err := p.mirror.Mirror(ctx, docs)
		if err != nil {
			slog.Warn("failed to mirror documents", "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("mirror: %w", err))
		}
		result.Mirrored = ms.Indexed
	}

	result.Duration = time.Since(start)
	if p.config.Strict && len(result.Errors) > 0 {
		return result, fmt.Errorf("publish failed: %w", errors.Join(result.Errors...))
	}
	return result, nil
}

func (p *Pipeline) publish(ctx context.Context, sources []segmenter.Source, docs []models.SearchDocument) error {
	if err := p.store.EnsureBucket(ctx); err != nil {
		return err
	}
	if err := p.store.PutArtifact(ctx, p.config.ArtifactKey, docs); err != nil {
		return err
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	return p.store.PutManifest(ctx, storage.Manifest{
		Key:       p.config.ArtifactKey,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Documents: len(docs),
		Sources:   names,
	})
}
