// Package config loads process configuration from defaults, an optional
// config file, environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/postprocessors"
)

// Index backends
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultSanityQuery is run after ingestion unless overridden
const DefaultSanityQuery = "Is there any news about COVID-19 vaccines in Barbados?"

// Config is the complete process configuration
type Config struct {
	DataDir      string   `mapstructure:"data_dir"`
	Files        []string `mapstructure:"files"`
	IndexPath    string   `mapstructure:"index_path"`
	IndexBackend string   `mapstructure:"index_backend"`
	DatabaseURL  string   `mapstructure:"database_url"`
	RedisURL     string   `mapstructure:"redis_url"`

	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Chunk     ChunkConfig     `mapstructure:"chunk"`
	Search    SearchConfig    `mapstructure:"search"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// EmbeddingConfig selects and tunes the embedding backend
type EmbeddingConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Dimensions  int           `mapstructure:"dimensions"`
	BatchSize   int           `mapstructure:"batch_size"`
	Concurrency int           `mapstructure:"concurrency"`
	RateLimit   float64       `mapstructure:"rate_limit"` // Requests per second, 0 disables
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`  // Query cache TTL when Redis is configured
}

// LLMConfig selects the answer generator
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
}

// ChunkConfig sizes the chunker, in characters
type ChunkConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// SearchConfig holds retrieval defaults
type SearchConfig struct {
	K            int     `mapstructure:"k"`
	UseDiversity bool    `mapstructure:"use_diversity"`
	FetchK       int     `mapstructure:"fetch_k"`
	Lambda       float64 `mapstructure:"lambda"`
}

// ServerConfig configures the HTTP relay
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	JWTSecret string `mapstructure:"jwt_secret"` // Empty disables bearer auth
}

// LogConfig configures slog output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
	File   string `mapstructure:"file"`   // Optional; log lines are also appended here
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"data_dir":              "DATA_DIR",
	"files":                 "SOURCE_FILES",
	"index_path":            "INDEX_PATH",
	"index_backend":         "INDEX_BACKEND",
	"database_url":          "DATABASE_URL",
	"redis_url":             "REDIS_URL",
	"embedding.provider":    "EMBEDDING_PROVIDER",
	"embedding.model":       "EMBEDDING_MODEL",
	"embedding.base_url":    "EMBEDDING_BASE_URL",
	"embedding.api_key":     "EMBEDDING_API_KEY",
	"embedding.dimensions":  "EMBEDDING_DIMENSIONS",
	"embedding.batch_size":  "EMBED_BATCH_SIZE",
	"embedding.concurrency": "EMBED_CONCURRENCY",
	"embedding.rate_limit":  "EMBED_RATE_LIMIT",
	"embedding.cache_ttl":   "EMBEDDING_CACHE_TTL",
	"llm.provider":          "LLM_PROVIDER",
	"llm.model":             "LLM_MODEL",
	"llm.base_url":          "LLM_BASE_URL",
	"llm.api_key":           "GROQ_API_KEY",
	"chunk.size":            "CHUNK_SIZE",
	"chunk.overlap":         "CHUNK_OVERLAP",
	"search.fetch_k":        "FETCH_K",
	"search.lambda":         "MMR_LAMBDA",
	"server.port":           "PORT",
	"server.jwt_secret":     "JWT_SECRET",
	"log.level":             "LOG_LEVEL",
	"log.format":            "LOG_FORMAT",
	"log.file":              "LOG_FILE",
}

// FlagKeys maps command-line flag names to config keys
var FlagKeys = map[string]string{
	"data-dir":      "data_dir",
	"files":         "files",
	"index-path":    "index_path",
	"index-backend": "index_backend",
	"provider":      "embedding.provider",
	"model":         "embedding.model",
	"chunk-size":    "chunk.size",
	"chunk-overlap": "chunk.overlap",
	"fetch-k":       "search.fetch_k",
	"lambda":        "search.lambda",
	"port":          "server.port",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"log-file":      "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("files", domain.DefaultSourceFiles)
	v.SetDefault("index_path", "db/claims_index")
	v.SetDefault("index_backend", BackendSQLite)

	v.SetDefault("embedding.provider", string(domain.AIProviderLocal))
	v.SetDefault("embedding.dimensions", domain.DefaultEmbeddingDimensions)
	v.SetDefault("embedding.batch_size", 64)
	v.SetDefault("embedding.concurrency", 1)
	v.SetDefault("embedding.cache_ttl", "24h")

	v.SetDefault("llm.provider", string(domain.AIProviderGroq))
	v.SetDefault("llm.model", domain.DefaultLLMModel)
	v.SetDefault("llm.temperature", 0.0)

	v.SetDefault("chunk.size", postprocessors.DefaultChunkSize)
	v.SetDefault("chunk.overlap", postprocessors.DefaultChunkOverlap)

	v.SetDefault("search.k", domain.DefaultK)
	v.SetDefault("search.use_diversity", true)
	v.SetDefault("search.fetch_k", domain.DefaultFetchK)
	v.SetDefault("search.lambda", domain.DefaultLambda)

	v.SetDefault("server.port", 8000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load builds the configuration. file may be empty; flags may be nil.
// Only flags listed in FlagKeys are bound.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the invariants every command relies on.
// Credentials for answer generation are checked separately by RequireLLM.
func (c *Config) Validate() error {
	var errs []error

	if c.Chunk.Size <= 0 {
		errs = append(errs, fmt.Errorf("chunk.size must be positive, got %d", c.Chunk.Size))
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		errs = append(errs, fmt.Errorf("chunk.overlap must be within [0, chunk.size), got %d", c.Chunk.Overlap))
	}
	if c.Search.K <= 0 {
		errs = append(errs, fmt.Errorf("search.k must be positive, got %d", c.Search.K))
	}
	if c.Search.FetchK < 0 {
		errs = append(errs, fmt.Errorf("search.fetch_k must not be negative, got %d", c.Search.FetchK))
	}
	if c.Search.Lambda < 0 || c.Search.Lambda > 1 {
		errs = append(errs, fmt.Errorf("search.lambda must be within [0, 1], got %g", c.Search.Lambda))
	}
	if _, err := domain.ParseAIProvider(c.Embedding.Provider); err != nil {
		errs = append(errs, fmt.Errorf("embedding.provider: %w", err))
	}
	if c.Embedding.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize))
	}
	if c.Embedding.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("embedding.rate_limit must not be negative, got %g", c.Embedding.RateLimit))
	}

	switch c.IndexBackend {
	case BackendSQLite:
		if c.IndexPath == "" {
			errs = append(errs, errors.New("index_path is required for the sqlite backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: database_url is required for the postgres backend", domain.ErrNotConfigured))
		}
	default:
		errs = append(errs, fmt.Errorf("index_backend must be %q or %q, got %q", BackendSQLite, BackendPostgres, c.IndexBackend))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// RequireLLM fails with domain.ErrNotConfigured when answers cannot be generated
func (c *Config) RequireLLM() error {
	if !c.LLMSettings().IsConfigured() {
		return fmt.Errorf("%w: %s API key is required (set GROQ_API_KEY)", domain.ErrNotConfigured, c.LLM.Provider)
	}
	return nil
}

// EmbeddingSettings returns the embedding service settings
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider:   domain.AIProvider(c.Embedding.Provider),
		Model:      c.Embedding.Model,
		APIKey:     c.Embedding.APIKey,
		BaseURL:    c.Embedding.BaseURL,
		Dimensions: c.Embedding.Dimensions,
	}
}

// LLMSettings returns the answer generator settings
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider:    domain.AIProvider(c.LLM.Provider),
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
	}
}

// ChunkConfig returns the chunker configuration
func (c *Config) ChunkConfig() postprocessors.ChunkConfig {
	cc := postprocessors.DefaultChunkConfig()
	cc.ChunkSize = c.Chunk.Size
	cc.Overlap = c.Chunk.Overlap
	return cc
}

// SearchOptions returns the default retrieval options
func (c *Config) SearchOptions() domain.SearchOptions {
	return domain.SearchOptions{
		K:            c.Search.K,
		UseDiversity: c.Search.UseDiversity,
		FetchK:       c.Search.FetchK,
		Lambda:       c.Search.Lambda,
	}
}
