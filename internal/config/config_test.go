package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envVars = []string{
	"EMBEDDING_PROVIDER", "EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY",
	"VECTOR_STORE", "QDRANT_URL", "QDRANT_COLLECTION", "QDRANT_VECTOR_SIZE",
	"DB_PATH", "INGEST_ROOT", "API_PORT", "LOG_LEVEL", "LOG_FORMAT", "TOKEN_ENCODING",
	"METRICS_NAMESPACE", "RETRIEVAL_CONFIG",
}

// clearEnv blanks every variable Load reads and moves into a directory
// without a .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with required fields",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.QdrantVectorSize == 768
			},
		},
		{
			name:     "missing QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "invalid QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "negative QDRANT_VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "-1")
			},
			wantErr: true,
		},
		{
			name: "unknown embedding provider",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
				t.Setenv("EMBEDDING_PROVIDER", "carrier-pigeon")
			},
			wantErr: true,
		},
		{
			name: "unknown vector store",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
				t.Setenv("VECTOR_STORE", "redis")
			},
			wantErr: true,
		},
		{
			name: "unknown log format",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
				t.Setenv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
		{
			name: "unknown log level",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
				t.Setenv("LOG_LEVEL", "chatty")
			},
			wantErr: true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingProvider == ProviderHTTP &&
					cfg.EmbeddingBaseURL == "http://localhost:8081" &&
					cfg.EmbeddingModelName == "granite-embedding-278m-multilingual" &&
					cfg.EmbeddingAPIKey == "dummy-key" &&
					cfg.VectorStore == StoreQdrant &&
					cfg.QdrantURL == "http://localhost:6333" &&
					cfg.QdrantCollection == "chunks" &&
					cfg.DBPath == "./data/hybridrag.db" &&
					cfg.IngestRoot == "" &&
					cfg.APIPort == "9000" &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.LogFormat == "text" &&
					cfg.TokenEncoding == "cl100k_base" &&
					cfg.MetricsNamespace == "hybridrag" &&
					cfg.Retrieval == DefaultRetrieval()
			},
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				t.Setenv("QDRANT_VECTOR_SIZE", "256")
				t.Setenv("EMBEDDING_PROVIDER", "OpenAI")
				t.Setenv("VECTOR_STORE", "memory")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("LOG_FORMAT", "JSON")
				t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "custom", "db.db"))
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingProvider == ProviderOpenAI &&
					cfg.VectorStore == StoreMemory &&
					cfg.LogLevel == slog.LevelDebug &&
					cfg.LogFormat == "json" &&
					filepath.Base(cfg.DBPath) == "db.db"
			},
		},
		{
			name: "retrieval config file",
			setupEnv: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "retrieval.yaml")
				if err := os.WriteFile(path, []byte("default_top_k: 8\nmax_top_k: 30\n"), 0o644); err != nil {
					t.Fatalf("failed to write retrieval config: %v", err)
				}
				t.Setenv("QDRANT_VECTOR_SIZE", "768")
				t.Setenv("RETRIEVAL_CONFIG", path)
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.Retrieval.DefaultTopK == 8 &&
					cfg.Retrieval.MaxTopK == 30 &&
					cfg.Retrieval.FetchMultiplier == 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	clearEnv(t)

	dbPath := filepath.Join(t.TempDir(), "test", "db.db")
	t.Setenv("QDRANT_VECTOR_SIZE", "768")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}

	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestLoad_DotEnvInParent(t *testing.T) {
	clearEnv(t)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("QDRANT_VECTOR_SIZE=384\nAPI_PORT=9100\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	child := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	t.Chdir(child)
	t.Setenv("DB_PATH", filepath.Join(root, "db.db"))
	// godotenv does not override variables that are already set, so unset
	// the blanks clearEnv left behind.
	_ = os.Unsetenv("QDRANT_VECTOR_SIZE")
	_ = os.Unsetenv("API_PORT")
	t.Cleanup(func() {
		_ = os.Unsetenv("QDRANT_VECTOR_SIZE")
		_ = os.Unsetenv("API_PORT")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QdrantVectorSize != 384 || cfg.APIPort != "9100" {
		t.Errorf("Load() did not read parent .env: size=%d port=%s", cfg.QdrantVectorSize, cfg.APIPort)
	}
}

func TestLoadRetrieval(t *testing.T) {
	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "retrieval.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		return path
	}

	tests := []struct {
		name    string
		path    func(*testing.T) string
		want    Retrieval
		wantErr string
	}{
		{
			name: "empty path uses defaults",
			path: func(*testing.T) string { return "" },
			want: DefaultRetrieval(),
		},
		{
			name: "missing file uses defaults",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			want: DefaultRetrieval(),
		},
		{
			name: "partial override",
			path: func(t *testing.T) string { return write(t, "fetch_multiplier: 3\nmin_fetch: 20\nmax_levels: 3\n") },
			want: Retrieval{DefaultTopK: 5, MaxTopK: 50, FetchMultiplier: 3, MinFetch: 20, MaxLevels: 3},
		},
		{
			name:    "malformed yaml",
			path:    func(t *testing.T) string { return write(t, "default_top_k: [1, 2\n") },
			wantErr: "failed to parse",
		},
		{
			name:    "max below default",
			path:    func(t *testing.T) string { return write(t, "default_top_k: 10\nmax_top_k: 5\n") },
			wantErr: "max_top_k",
		},
		{
			name:    "zero levels",
			path:    func(t *testing.T) string { return write(t, "max_levels: 0\n") },
			wantErr: "max_levels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadRetrieval(tt.path(t))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("LoadRetrieval() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadRetrieval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LoadRetrieval() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		set          bool
		defaultValue string
		want         string
	}{
		{"env var set", "set-value", true, "default", "set-value"},
		{"env var not set", "", false, "default", "default"},
		{"empty env var uses default", "", true, "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			if !tt.set {
				_ = os.Unsetenv("TEST_ENV_VAR")
			}
			got := getEnv("TEST_ENV_VAR", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", "TEST_ENV_VAR", tt.defaultValue, got, tt.want)
			}
		})
	}
}
