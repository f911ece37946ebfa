package config

import (
	"os"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	envVars := []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "JINA_API_KEY", "EMBEDDING_MODEL",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD",
		"QDRANT_URL", "QDRANT_COLLECTION", "TOP_K_RESULTS",
		"RAW_ARTICLES_DIR", "RSS_FEED_URLS", "API_PORT",
	}
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with all required fields",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-gemini-key")
				setEnv("JINA_API_KEY", "test-jina-key")
				setEnv("RAW_ARTICLES_DIR", t.TempDir())
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.GeminiAPIKey == "test-gemini-key" &&
					cfg.EmbeddingModel == "jina-embeddings-v3" &&
					cfg.TopKResults == 3 &&
					cfg.QdrantCollection == "news_articles" &&
					len(cfg.RSSFeedURLs) == 2
			},
		},
		{
			name: "missing GEMINI_API_KEY",
			setupEnv: func(t *testing.T) {
				setEnv("JINA_API_KEY", "test-jina-key")
			},
			wantErr: true,
		},
		{
			name: "missing JINA_API_KEY",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-gemini-key")
			},
			wantErr: true,
		},
		{
			name: "invalid TOP_K_RESULTS",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-gemini-key")
				setEnv("JINA_API_KEY", "test-jina-key")
				setEnv("TOP_K_RESULTS", "not-a-number")
			},
			wantErr: true,
		},
		{
			name: "zero TOP_K_RESULTS rejected",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-gemini-key")
				setEnv("JINA_API_KEY", "test-jina-key")
				setEnv("TOP_K_RESULTS", "0")
			},
			wantErr: true,
		},
		{
			name: "custom feeds and overrides",
			setupEnv: func(t *testing.T) {
				setEnv("GEMINI_API_KEY", "test-gemini-key")
				setEnv("JINA_API_KEY", "test-jina-key")
				setEnv("RAW_ARTICLES_DIR", t.TempDir())
				setEnv("RSS_FEED_URLS", "https://example.com/a.xml, https://example.com/b.xml,")
				setEnv("TOP_K_RESULTS", "7")
				setEnv("REDIS_DB", "2")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return len(cfg.RSSFeedURLs) == 2 &&
					cfg.RSSFeedURLs[1] == "https://example.com/b.xml" &&
					cfg.TopKResults == 7 &&
					cfg.RedisDB == 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				unsetEnv(key)
			}
			tt.setupEnv(t)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}
