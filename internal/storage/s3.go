package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mfenderov/ko-docsearch/internal/artifact"
	"github.com/mfenderov/ko-docsearch/pkg/models"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "ko-docsearch"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client publishes and fetches index artifacts in an S3/MinIO bucket.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Manifest describes a published artifact.
type Manifest struct {
	Key       string   `json:"key"`
	Timestamp string   `json:"timestamp"`
	Documents int      `json:"documents"`
	Sources   []string `json:"sources"`
}

// ManifestKey returns the object name of the manifest stored next to an
// artifact key.
func ManifestKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ".manifest.json"
}

// PutArtifact uploads docs in artifact format under key.
func (c *Client) PutArtifact(ctx context.Context, key string, docs []models.SearchDocument) error {
	var buf bytes.Buffer
	if err := artifact.Encode(&buf, docs); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	_, err := c.minioClient.PutObject(ctx, c.bucket, key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put artifact: %w", err)
	}
	return nil
}

// GetArtifact downloads and decodes the artifact stored under key.
func (c *Client) GetArtifact(ctx context.Context, key string) ([]models.SearchDocument, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	defer object.Close()

	docs, err := artifact.Decode(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return docs, nil
}

// PutManifest writes the manifest JSON next to its artifact.
func (c *Client) PutManifest(ctx context.Context, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	reader := bytes.NewReader(data)
	_, err = c.minioClient.PutObject(ctx, c.bucket, ManifestKey(m.Key), reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put manifest: %w", err)
	}
	return nil
}

// GetManifest reads the manifest of the artifact stored under key.
func (c *Client) GetManifest(ctx context.Context, key string) (*Manifest, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, ManifestKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}

// ListArtifacts returns the keys of all artifacts under prefix.
func (c *Client) ListArtifacts(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, ".json") && !strings.HasSuffix(object.Key, ".manifest.json") {
			keys = append(keys, object.Key)
		}
	}

	return keys, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
