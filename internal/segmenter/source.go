package segmenter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/mfenderov/ko-docsearch/internal/markdown"
)

// Source is one raw documentation file.
type Source struct {
	// Name is the file name including its extension; it prefixes document ids.
	Name string
	Path string
	Body string
}

// IsHTML reports whether the source must be converted before segmentation.
func (s Source) IsHTML() bool {
	return !markdown.Detect(s.Name, s.Body)
}

// ReadOptions controls which files of the documentation tree are read.
type ReadOptions struct {
	Extensions  []string
	IncludeHTML bool
	Workers     int
}

func (o ReadOptions) accepts(name string) bool {
	if name == "meta.json" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if o.IncludeHTML && markdown.IsHTMLPath(name) {
		return true
	}
	return slices.Contains(o.Extensions, ext)
}

// ReadSources reads every accepted file directly inside dir. Files are read
// concurrently but returned in file-name order. Any failure aborts the read.
func ReadSources(ctx context.Context, dir string, opts ReadOptions) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read docs directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !opts.accepts(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// os.ReadDir already sorts, keep the guarantee explicit
	slices.Sort(names)

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	sources := make([]Source, len(names))
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			path := filepath.Join(dir, name)
			b, err := os.ReadFile(path)
			if err != nil {
				errs[i] = fmt.Errorf("cannot read %s: %w", path, err)
				return
			}
			sources[i] = Source{Name: name, Path: path, Body: string(b)}
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("cannot schedule %s: %w", name, submitErr)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	slog.Debug("read documentation sources", "dir", dir, "files", len(sources))
	return sources, nil
}
