package storage

import (
	"context"
	"os"
	"testing"

	"github.com/mfenderov/ko-docsearch/pkg/models"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: true,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: true,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifestKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"search-data.json", "search-data.manifest.json"},
		{"site/v2/search-data.json", "site/v2/search-data.manifest.json"},
		{"artifact", "artifact.manifest.json"},
	}
	for _, tt := range tests {
		if got := ManifestKey(tt.key); got != tt.want {
			t.Errorf("ManifestKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// TestIntegration_S3Operations tests actual S3 operations against MinIO.
// Skip if MinIO is not running.
func TestIntegration_S3Operations(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "ko-docsearch-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Try to ensure bucket - skip if MinIO is not available
	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	key := "test/search-data.json"
	docs := []models.SearchDocument{
		{ID: "guide.mdx-main", Title: "설치 가이드", Content: "설치 방법", URL: "/docs/guide"},
		{ID: "guide.mdx-0", Title: "설치 가이드", Content: "패키지를 설치하는 방법을 설명합니다", URL: "/docs/guide", AnchorID: "설치"},
	}

	t.Run("PutArtifact", func(t *testing.T) {
		if err := client.PutArtifact(ctx, key, docs); err != nil {
			t.Fatalf("PutArtifact() error = %v", err)
		}
	})

	t.Run("GetArtifact", func(t *testing.T) {
		got, err := client.GetArtifact(ctx, key)
		if err != nil {
			t.Fatalf("GetArtifact() error = %v", err)
		}
		if len(got) != len(docs) {
			t.Fatalf("GetArtifact() returned %d documents, want %d", len(got), len(docs))
		}
		if got[1].AnchorID != "설치" {
			t.Errorf("GetArtifact()[1].AnchorID = %q, want %q", got[1].AnchorID, "설치")
		}
	})

	t.Run("PutManifest", func(t *testing.T) {
		m := Manifest{
			Key:       key,
			Timestamp: "2024-12-04T17:30:00Z",
			Documents: len(docs),
			Sources:   []string{"guide.mdx"},
		}
		if err := client.PutManifest(ctx, m); err != nil {
			t.Fatalf("PutManifest() error = %v", err)
		}
	})

	t.Run("GetManifest", func(t *testing.T) {
		m, err := client.GetManifest(ctx, key)
		if err != nil {
			t.Fatalf("GetManifest() error = %v", err)
		}
		if m.Documents != 2 {
			t.Errorf("GetManifest().Documents = %d, want %d", m.Documents, 2)
		}
	})

	t.Run("ListArtifacts", func(t *testing.T) {
		keys, err := client.ListArtifacts(ctx, "test/")
		if err != nil {
			t.Fatalf("ListArtifacts() error = %v", err)
		}
		if len(keys) != 1 || keys[0] != key {
			t.Errorf("ListArtifacts() = %v, want [%s]", keys, key)
		}
	})
}
