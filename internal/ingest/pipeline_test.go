package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore"
	"github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore/mocks"
)

// fakeEmbedder returns fixed-size vectors, or a configured error.
type fakeEmbedder struct {
	err   error
	calls [][]string
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, []string{text})
	return []float32{0.1, 0.2}, nil
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, texts)
	embeddings := make([][]float32, len(texts))
	for i := range embeddings {
		embeddings[i] = []float32{0.1, 0.2}
	}
	return embeddings, nil
}

const testArticleJSON = `{
	"title": "Test Article",
	"text": "First paragraph of the article.\n\nSecond paragraph with more detail.",
	"url": "https://example.com/articles/test-article.html",
	"authors": ["Jane Doe"],
	"date_publish": "2026-08-20T10:00:00Z",
	"source_domain": "example.com",
	"language": "en",
	"description": "A short description.",
	"categories": [{"value": "politics"}],
	"fetch_time": "2026-08-21T08:00:00Z"
}`

func writeTestArticle(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(testArticleJSON), 0o644); err != nil {
		t.Fatalf("writing test article: %v", err)
	}
	return path
}

func TestProcessFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	index := mocks.NewMockVectorIndex(ctrl)
	embedder := &fakeEmbedder{}
	pipeline := NewPipeline(embedder, index)

	path := writeTestArticle(t, t.TempDir(), "article.json")

	index.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, ids []string) error {
			if len(ids) != supersedeProbe {
				t.Errorf("probe deleted %d ids, want %d", len(ids), supersedeProbe)
			}
			if ids[0] != "test-article_0" {
				t.Errorf("first probe id = %q, want test-article_0", ids[0])
			}
			return nil
		})

	index.EXPECT().
		Upsert(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, documents []map[string]any, embeddings [][]float32) error {
			if len(documents) != len(embeddings) {
				t.Errorf("documents (%d) and embeddings (%d) differ", len(documents), len(embeddings))
			}
			if len(documents) == 0 {
				t.Fatal("no documents upserted")
			}
			doc := documents[0]
			if doc["id"] != "test-article_0" {
				t.Errorf("doc id = %v, want test-article_0", doc["id"])
			}
			if doc["article_id"] != "test-article" {
				t.Errorf("article_id = %v, want test-article", doc["article_id"])
			}
			if doc["source_domain"] != "example.com" {
				t.Errorf("source_domain = %v", doc["source_domain"])
			}
			if doc["is_first_chunk"] != true {
				t.Errorf("is_first_chunk = %v, want true", doc["is_first_chunk"])
			}
			return nil
		})

	chunks, err := pipeline.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if chunks == 0 {
		t.Error("ProcessFile() stored no chunks")
	}

	// The embedding input carries title and description for context.
	if len(embedder.calls) != 1 {
		t.Fatalf("embedder called %d times, want 1", len(embedder.calls))
	}
	first := embedder.calls[0][0]
	for _, want := range []string{"Test Article", "A short description.", "First paragraph"} {
		if !strings.Contains(first, want) {
			t.Errorf("embed input missing %q: %q", want, first)
		}
	}
}

func TestProcessFileEmbeddingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	index := mocks.NewMockVectorIndex(ctrl)
	embedder := &fakeEmbedder{err: errors.New("embeddings down")}
	pipeline := NewPipeline(embedder, index)

	path := writeTestArticle(t, t.TempDir(), "article.json")
	index.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	if _, err := pipeline.ProcessFile(context.Background(), path); err == nil {
		t.Error("ProcessFile() error = nil, want embedding failure")
	}
}

func TestProcessFileMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	pipeline := NewPipeline(&fakeEmbedder{}, mocks.NewMockVectorIndex(ctrl))

	if _, err := pipeline.ProcessFile(context.Background(), "/nonexistent/article.json"); err == nil {
		t.Error("ProcessFile() error = nil for missing file")
	}
}

func TestProcessDirectorySkipsBadFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	index := mocks.NewMockVectorIndex(ctrl)
	pipeline := NewPipeline(&fakeEmbedder{}, index)

	dir := t.TempDir()
	writeTestArticle(t, dir, "good.json")
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	index.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
	index.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	processed, err := pipeline.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
}

func TestSearchNews(t *testing.T) {
	t.Run("recent search without filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		index := mocks.NewMockVectorIndex(ctrl)
		pipeline := NewPipeline(&fakeEmbedder{}, index)

		index.EXPECT().
			SearchRecent(gomock.Any(), gomock.Any(), 7, 5).
			Return([]map[string]any{{"title": "hit"}}, nil)

		results, err := pipeline.SearchNews(context.Background(), "elections", 5, 7, nil, nil)
		if err != nil {
			t.Fatalf("SearchNews() error = %v", err)
		}
		if len(results) != 1 {
			t.Errorf("results = %d, want 1", len(results))
		}
	})

	t.Run("filtered search", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		index := mocks.NewMockVectorIndex(ctrl)
		pipeline := NewPipeline(&fakeEmbedder{}, index)

		index.EXPECT().
			Search(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, embedding []float32, params vectorstore.SearchParams) ([]map[string]any, error) {
				if len(params.SourceDomains) != 1 || params.SourceDomains[0] != "example.com" {
					t.Errorf("SourceDomains = %v", params.SourceDomains)
				}
				if params.StartDate == nil {
					t.Error("StartDate = nil, want recent-days lower bound")
				}
				return nil, nil
			})

		if _, err := pipeline.SearchNews(context.Background(), "elections", 5, 7, []string{"example.com"}, nil); err != nil {
			t.Fatalf("SearchNews() error = %v", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		pipeline := NewPipeline(&fakeEmbedder{}, mocks.NewMockVectorIndex(ctrl))

		if _, err := pipeline.SearchNews(context.Background(), "  ", 5, 0, nil, nil); err == nil {
			t.Error("SearchNews() error = nil for empty query")
		}
	})
}
