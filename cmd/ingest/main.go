package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/config"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/ingest"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/llm"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
)

func main() {
	fetch := flag.Bool("fetch", false, "fetch new articles from the configured RSS feeds")
	process := flag.Bool("process", false, "process raw article files into the vector index")
	limit := flag.Int("limit", 50, "maximum number of articles to fetch")
	dir := flag.String("dir", "", "raw articles directory (defaults to RAW_ARTICLES_DIR)")
	flag.Parse()

	if !*fetch && !*process {
		log.Fatal("nothing to do: pass -fetch and/or -process")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	slog.SetDefault(slog.New(handler))

	articlesDir := cfg.RawArticlesDir
	if *dir != "" {
		articlesDir = *dir
	}

	ctx := context.Background()

	if *fetch {
		fetcher := ingest.NewFetcher(cfg.RSSFeedURLs, articlesDir)
		saved, err := fetcher.FetchArticles(ctx, *limit)
		if err != nil {
			log.Fatalf("RSS fetch failed: %v", err)
		}
		slog.Info("RSS fetch finished", "saved", saved, "dir", articlesDir)
	}

	if *process {
		embedder := llm.NewEmbeddingsClient("", cfg.JinaAPIKey, cfg.EmbeddingModel)
		index, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection, embedder.Dimension(), cfg.TopKResults)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := index.EnsureReady(ctx); err != nil {
			log.Fatalf("Failed to prepare Qdrant collection: %v", err)
		}

		pipeline := ingest.NewPipeline(embedder, index)
		processed, err := pipeline.ProcessDirectory(ctx, articlesDir)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}
		slog.Info("Processing finished", "files", processed, "dir", articlesDir)
	}
}
