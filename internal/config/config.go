package config

import "time"

// Config holds all application configuration.
type Config struct {
	Source        Source        `mapstructure:"source"`
	Index         Index         `mapstructure:"index"`
	Search        Search        `mapstructure:"search"`
	Storage       Storage       `mapstructure:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Publish       Publish       `mapstructure:"publish"`
	MCP           MCP           `mapstructure:"mcp"`
}

// Source describes the documentation tree the index is built from.
type Source struct {
	Dir         string   `mapstructure:"dir"`
	Extensions  []string `mapstructure:"extensions"`
	RoutePrefix string   `mapstructure:"route_prefix"`
	IncludeHTML bool     `mapstructure:"include_html"`
	Workers     int      `mapstructure:"workers"` // 0 = one per CPU
}

// Index locates the index artifact.
type Index struct {
	Path    string `mapstructure:"path"`
	BaseURL string `mapstructure:"base_url"` // load over HTTP instead of Path when set
	Name    string `mapstructure:"name"`
}

// Search holds query-time settings.
type Search struct {
	Limit        int           `mapstructure:"limit"`
	SuggestLimit int           `mapstructure:"suggest_limit"`
	Debounce     time.Duration `mapstructure:"debounce"`
}

// Storage holds S3/MinIO storage configuration. An empty endpoint disables
// publishing to object storage.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	Key             string `mapstructure:"key"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether object storage is configured.
func (s Storage) Enabled() bool { return s.Endpoint != "" }

// Elasticsearch holds ES connection configuration. No addresses disables the
// mirror.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Enabled reports whether the Elasticsearch mirror is configured.
func (e Elasticsearch) Enabled() bool { return len(e.Addresses) > 0 }

// Publish controls how sink failures are treated.
type Publish struct {
	Strict bool `mapstructure:"strict"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Source: Source{
			Dir:         "src/content",
			Extensions:  []string{".mdx", ".md"},
			RoutePrefix: "/docs",
			IncludeHTML: false,
		},
		Index: Index{
			Path: "public/search-data.json",
			Name: "search-data.json",
		},
		Search: Search{
			Limit:        10,
			SuggestLimit: 5,
			Debounce:     300 * time.Millisecond,
		},
		Storage: Storage{
			Endpoint:        "", // Disabled by default
			Bucket:          "ko-docsearch",
			Key:             "search-data.json",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Elasticsearch: Elasticsearch{
			Addresses: nil, // Disabled by default
			Index:     "ko-docsearch-documents",
		},
		MCP: MCP{
			Name:    "ko-docsearch",
			Version: "1.0.0",
		},
	}
}
