package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/config"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/http"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/ingest"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/llm"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/rag"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/session"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// Redis-backed session store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		_ = redisClient.Close()
	}()
	sessions := session.NewRedisStore(redisClient)
	slog.Info("Session store initialized", "addr", cfg.RedisAddr)

	// Embeddings client determines the vector size for the index
	embedder := llm.NewEmbeddingsClient("", cfg.JinaAPIKey, cfg.EmbeddingModel)

	index, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection, embedder.Dimension(), cfg.TopKResults)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := index.EnsureReady(ctx); err != nil {
		log.Fatalf("Failed to prepare Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", embedder.Dimension())

	llmClient := llm.NewClient("", cfg.GeminiAPIKey, cfg.GeminiModelName)

	analyzer := rag.NewAnalyzer(llmClient)
	orchestrator := rag.NewOrchestrator(analyzer, embedder, index, llmClient, sessions, cfg.TopKResults)
	slog.Info("Conversation orchestrator initialized", "model", cfg.GeminiModelName)

	pipeline := ingest.NewPipeline(embedder, index)

	deps := &http.Deps{
		Conversations: orchestrator,
		Sessions:      sessions,
		News:          pipeline,
		VectorIndex:   index,
		TopKResults:   cfg.TopKResults,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
