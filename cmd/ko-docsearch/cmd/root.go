package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/ko-docsearch/internal/config"
)

var (
	cfgFile      string
	artifactPath string
	verbose      bool
	cfg          config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "ko-docsearch",
	Short: "Korean-aware documentation search",
	Long: `ko-docsearch builds a search index from a documentation tree and
answers queries against it, including Korean initial-consonant (ㄱㅇㄷ)
and partially typed syllable queries.

Commands:
  build        Segment the docs into search documents and write the index artifact
  search       Search the index
  suggest      Suggest titles for a partial query
  stats        Show index statistics
  interactive  Type-ahead search in the terminal
  serve        Start the MCP server backed by the index
  ingest       Mirror a published artifact into Elasticsearch`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&artifactPath, "artifact", "", "index artifact path (overrides index.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/ko-docsearch")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// KODOCSEARCH_SOURCE_DIR -> source.dir
	viper.SetEnvPrefix("KODOCSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("source.dir", "KODOCSEARCH_SOURCE_DIR")
	viper.BindEnv("source.extensions", "KODOCSEARCH_SOURCE_EXTENSIONS")
	viper.BindEnv("source.route_prefix", "KODOCSEARCH_SOURCE_ROUTE_PREFIX")
	viper.BindEnv("source.include_html", "KODOCSEARCH_SOURCE_INCLUDE_HTML")
	viper.BindEnv("source.workers", "KODOCSEARCH_SOURCE_WORKERS")
	viper.BindEnv("index.path", "KODOCSEARCH_INDEX_PATH")
	viper.BindEnv("index.base_url", "KODOCSEARCH_INDEX_BASE_URL")
	viper.BindEnv("index.name", "KODOCSEARCH_INDEX_NAME")
	viper.BindEnv("search.limit", "KODOCSEARCH_SEARCH_LIMIT")
	viper.BindEnv("search.suggest_limit", "KODOCSEARCH_SEARCH_SUGGEST_LIMIT")
	viper.BindEnv("search.debounce", "KODOCSEARCH_SEARCH_DEBOUNCE")
	viper.BindEnv("storage.endpoint", "KODOCSEARCH_STORAGE_ENDPOINT")
	viper.BindEnv("storage.bucket", "KODOCSEARCH_STORAGE_BUCKET")
	viper.BindEnv("storage.key", "KODOCSEARCH_STORAGE_KEY")
	viper.BindEnv("storage.access_key_id", "KODOCSEARCH_STORAGE_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_access_key", "KODOCSEARCH_STORAGE_SECRET_ACCESS_KEY")
	viper.BindEnv("storage.use_ssl", "KODOCSEARCH_STORAGE_USE_SSL")
	viper.BindEnv("elasticsearch.addresses", "KODOCSEARCH_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("elasticsearch.index", "KODOCSEARCH_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.username", "KODOCSEARCH_ELASTICSEARCH_USERNAME")
	viper.BindEnv("elasticsearch.password", "KODOCSEARCH_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("publish.strict", "KODOCSEARCH_PUBLISH_STRICT")
	viper.BindEnv("mcp.name", "KODOCSEARCH_MCP_NAME")
	viper.BindEnv("mcp.version", "KODOCSEARCH_MCP_VERSION")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special cases: lists as comma-separated strings from env
	if addrs := os.Getenv("KODOCSEARCH_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
	if exts := os.Getenv("KODOCSEARCH_SOURCE_EXTENSIONS"); exts != "" {
		cfg.Source.Extensions = strings.Split(exts, ",")
	}

	if artifactPath != "" {
		cfg.Index.Path = artifactPath
	}
}
