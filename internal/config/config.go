package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

// Vector store backends.
const (
	StoreQdrant = "qdrant"
	StoreMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	EmbeddingProvider  string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	VectorStore        string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	DBPath             string
	IngestRoot         string
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string
	TokenEncoding      string
	MetricsNamespace   string
	Retrieval          Retrieval
}

// Retrieval holds query tuning read from the RETRIEVAL_CONFIG YAML file.
type Retrieval struct {
	DefaultTopK     int `yaml:"default_top_k"`
	MaxTopK         int `yaml:"max_top_k"`
	FetchMultiplier int `yaml:"fetch_multiplier"`
	MinFetch        int `yaml:"min_fetch"`
	MaxLevels       int `yaml:"max_levels"`
}

// DefaultRetrieval returns the tuning used when no file is configured.
func DefaultRetrieval() Retrieval {
	return Retrieval{
		DefaultTopK:     5,
		MaxTopK:         50,
		FetchMultiplier: 2,
		MinFetch:        10,
		MaxLevels:       2,
	}
}

// Validate checks that every value is usable.
func (r Retrieval) Validate() error {
	switch {
	case r.DefaultTopK <= 0:
		return errors.New("default_top_k must be greater than 0")
	case r.MaxTopK < r.DefaultTopK:
		return errors.New("max_top_k must be at least default_top_k")
	case r.FetchMultiplier < 1:
		return errors.New("fetch_multiplier must be at least 1")
	case r.MinFetch < 0:
		return errors.New("min_fetch must not be negative")
	case r.MaxLevels < 1:
		return errors.New("max_levels must be at least 1")
	}
	return nil
}

// LoadRetrieval reads retrieval tuning from a YAML file. Fields absent from the
// file keep their defaults. An empty path or a missing file yields the defaults.
func LoadRetrieval(path string) (Retrieval, error) {
	r := DefaultRetrieval()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("failed to read retrieval config: %w", err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse retrieval config %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("invalid retrieval config %s: %w", path, err)
	}
	return r, nil
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderHTTP)),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		VectorStore:        strings.ToLower(getEnv("VECTOR_STORE", StoreQdrant)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "chunks"),
		DBPath:             getEnv("DB_PATH", "./data/hybridrag.db"),
		IngestRoot:         getEnv("INGEST_ROOT", ""),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		TokenEncoding:      getEnv("TOKEN_ENCODING", "cl100k_base"),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "hybridrag"),
	}

	// QDRANT_VECTOR_SIZE must match the output size of the embedding model.
	// Changing it requires recreating the Qdrant collection.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	switch cfg.EmbeddingProvider {
	case ProviderHTTP, ProviderOpenAI, ProviderHash:
	default:
		return nil, fmt.Errorf("EMBEDDING_PROVIDER must be one of http, openai, hash: got %q", cfg.EmbeddingProvider)
	}
	switch cfg.VectorStore {
	case StoreQdrant, StoreMemory:
	default:
		return nil, fmt.Errorf("VECTOR_STORE must be qdrant or memory: got %q", cfg.VectorStore)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json: got %q", cfg.LogFormat)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	cfg.Retrieval, err = LoadRetrieval(getEnv("RETRIEVAL_CONFIG", ""))
	if err != nil {
		return nil, err
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env from the working directory or the nearest parent
// that has one. Missing files are ignored.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
