// Package artifact reads and writes the search index artifact: a bare JSON
// array of search documents.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// DefaultName is the artifact file name under the deployment base path.
const DefaultName = "search-data.json"

// ErrEmptyArtifact is returned when an artifact has no content at all.
var ErrEmptyArtifact = errors.New("empty index artifact")

const lockTimeout = 10 * time.Second

// Encode writes docs as an indented JSON array.
func Encode(w io.Writer, docs []models.SearchDocument) error {
	if docs == nil {
		docs = []models.SearchDocument{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

// Decode parses an artifact. Anything but an array of documents is rejected.
func Decode(r io.Reader) ([]models.SearchDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read index artifact: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyArtifact
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var docs []models.SearchDocument
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("invalid index artifact: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid index artifact: trailing data after document array")
	}
	if docs == nil {
		return nil, errors.New("invalid index artifact: expected a JSON array")
	}
	return docs, nil
}

// Write stores docs at path. The file is replaced atomically while holding
// an exclusive lock next to it, so readers never observe a partial artifact
// and concurrent builds cannot interleave.
func Write(path string, docs []models.SearchDocument) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create artifact directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := tryLock(lock, lockTimeout)
	if err != nil {
		return err
	}
	if !locked {
		return fmt.Errorf("another build is writing %s (lock: %s)", path, lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temporary artifact: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Encode(tmp, docs); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode index artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush index artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close index artifact: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace index artifact: %w", err)
	}

	slog.Debug("index artifact written", "path", path, "documents", len(docs))
	return nil
}

func tryLock(l *flock.Flock, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return false, fmt.Errorf("cannot acquire artifact lock: %w", err)
		}
		if locked || time.Now().After(deadline) {
			return locked, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// LoadFile reads the artifact at path.
func LoadFile(path string) ([]models.SearchDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open index artifact: %w", err)
	}
	defer f.Close()

	docs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}
