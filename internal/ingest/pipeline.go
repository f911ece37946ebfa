package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/news"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
)

// supersedeProbe is how many chunk ids per article are deleted before
// re-ingesting it. Articles never chunk anywhere near this deep.
const supersedeProbe = 20

// Embedder generates embeddings for texts.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline ingests raw article files into the vector index and answers
// search requests over it.
type Pipeline struct {
	embedder Embedder
	index    vectorstore.VectorIndex
	chunkMax int
}

func NewPipeline(embedder Embedder, index vectorstore.VectorIndex) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		index:    index,
		chunkMax: news.DefaultMaxChunkSize,
	}
}

// ProcessDirectory ingests every *.json article file in the directory.
// Files that fail are logged and skipped so one bad article cannot block a
// batch. Returns the number of files successfully ingested.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("listing article files in %s: %w", dir, err)
	}

	processed := 0
	for _, path := range paths {
		chunks, err := p.ProcessFile(ctx, path)
		if err != nil {
			logger.Error("skipping article file", "path", path, "error", err)
			continue
		}
		logger.Info("processed article file", "path", path, "chunks", chunks)
		processed++
	}

	logger.Info("directory ingestion finished", "dir", dir, "files", len(paths), "processed", processed)
	return processed, nil
}

// ProcessFile ingests a single raw article file: load, chunk, delete any
// chunks from a previous ingestion of the same article, embed and upsert.
// Returns the number of chunks stored.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := news.LoadRawArticle(path)
	if err != nil {
		return 0, err
	}
	article := news.PrepareArticle(raw)

	chunks := news.ChunkArticle(article, p.chunkMax)
	if len(chunks) == 0 {
		logger.Warn("article produced no chunks", "path", path, "article_id", article.ID)
		return 0, nil
	}

	if err := p.deleteExistingChunks(ctx, article.ID); err != nil {
		return 0, fmt.Errorf("superseding article %s: %w", article.ID, err)
	}

	documents := make([]map[string]any, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		documents = append(documents, chunkDocument(chunk))
		texts = append(texts, embedInput(chunk))
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks for %s: %w", article.ID, err)
	}
	if len(embeddings) != len(documents) {
		logger.Warn("chunk and embedding counts differ, storing the prefix",
			"chunks", len(documents), "embeddings", len(embeddings))
		documents = documents[:len(embeddings)]
	}

	if err := p.index.Upsert(ctx, documents, embeddings); err != nil {
		return 0, fmt.Errorf("storing chunks for %s: %w", article.ID, err)
	}
	return len(documents), nil
}

// SearchNews embeds the query and runs a filtered similarity search.
// recentDays > 0 restricts results to that many trailing days.
func (p *Pipeline) SearchNews(ctx context.Context, query string, limit, recentDays int, sourceDomains, categories []string) ([]map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	embedding, err := p.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding search query: %w", err)
	}

	if recentDays > 0 && len(sourceDomains) == 0 && len(categories) == 0 {
		return p.index.SearchRecent(ctx, embedding, recentDays, limit)
	}

	params := vectorstore.SearchParams{
		Limit:         limit,
		SourceDomains: sourceDomains,
		Categories:    categories,
	}
	if recentDays > 0 {
		start := time.Now().AddDate(0, 0, -recentDays)
		params.StartDate = &start
	}
	return p.index.Search(ctx, embedding, params)
}

// deleteExistingChunks removes chunks from a previous ingestion of the
// article by probing the id space.
func (p *Pipeline) deleteExistingChunks(ctx context.Context, articleID string) error {
	ids := make([]string, supersedeProbe)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s_%d", articleID, i)
	}
	return p.index.Delete(ctx, ids)
}

// chunkDocument flattens a chunk into the payload stored alongside its
// embedding.
func chunkDocument(chunk news.Chunk) map[string]any {
	doc := map[string]any{
		"id":            chunk.ID,
		"article_id":    chunk.ArticleID,
		"title":         chunk.Title,
		"text":          chunk.Text,
		"url":           chunk.URL,
		"date_publish":  chunk.DatePublish,
		"source_domain": chunk.SourceDomain,
		"categories":    chunk.Categories,
		"description":   chunk.Description,
	}
	for k, v := range chunk.Metadata {
		doc[k] = v
	}
	return doc
}

// embedInput combines title, description and chunk text so short chunks
// still embed with their article's context.
func embedInput(chunk news.Chunk) string {
	var b strings.Builder
	b.WriteString(chunk.Title)
	if chunk.Description != "" {
		b.WriteString(" ")
		b.WriteString(chunk.Description)
	}
	b.WriteString(" ")
	b.WriteString(chunk.Text)
	return b.String()
}
