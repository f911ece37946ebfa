package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort string

	GeminiAPIKey    string
	GeminiModelName string

	JinaAPIKey     string
	EmbeddingModel string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	QdrantURL        string
	QdrantCollection string
	TopKResults      int

	RawArticlesDir string
	RSSFeedURLs    []string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is
// loaded automatically; variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env at the project root.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:          getEnv("API_PORT", "8000"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModelName:  getEnv("GEMINI_MODEL", "gemini-2.0-flash-001"),
		JinaAPIKey:       getEnv("JINA_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "jina-embeddings-v3"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "news_articles"),
		RawArticlesDir:   getEnv("RAW_ARTICLES_DIR", "./data/raw_articles"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = redisDB

	topK, err := parseIntEnv("TOP_K_RESULTS", 3)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("TOP_K_RESULTS must be greater than 0")
	}
	cfg.TopKResults = topK

	feeds := getEnv("RSS_FEED_URLS", defaultFeedURLs)
	for _, u := range strings.Split(feeds, ",") {
		if u = strings.TrimSpace(u); u != "" {
			cfg.RSSFeedURLs = append(cfg.RSSFeedURLs, u)
		}
	}

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.JinaAPIKey == "" {
		return nil, fmt.Errorf("JINA_API_KEY is required")
	}

	if err := os.MkdirAll(cfg.RawArticlesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create raw articles directory: %w", err)
	}

	return cfg, nil
}

const defaultFeedURLs = "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml," +
	"https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml"

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an integer environment variable, returning the default
// when the variable is unset.
func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
