package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Source.RoutePrefix != "/docs" {
		t.Errorf("Source.RoutePrefix = %q, want %q", cfg.Source.RoutePrefix, "/docs")
	}
	if len(cfg.Source.Extensions) != 2 || cfg.Source.Extensions[0] != ".mdx" {
		t.Errorf("Source.Extensions = %v, want [.mdx .md]", cfg.Source.Extensions)
	}
	if cfg.Search.Limit != 10 || cfg.Search.SuggestLimit != 5 {
		t.Errorf("Search limits = %d/%d, want 10/5", cfg.Search.Limit, cfg.Search.SuggestLimit)
	}
	if cfg.Search.Debounce != 300*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 300ms", cfg.Search.Debounce)
	}
	if cfg.Storage.Enabled() {
		t.Error("Storage should be disabled by default")
	}
	if cfg.Elasticsearch.Enabled() {
		t.Error("Elasticsearch should be disabled by default")
	}
}

func TestEnabled(t *testing.T) {
	if !(Storage{Endpoint: "localhost:9000"}).Enabled() {
		t.Error("Storage with endpoint should be enabled")
	}
	if !(Elasticsearch{Addresses: []string{"http://localhost:9200"}}).Enabled() {
		t.Error("Elasticsearch with addresses should be enabled")
	}
}
