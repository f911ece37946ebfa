package news

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func testArticle(text string) Article {
	return Article{
		ID:           "my-article",
		Title:        "Test Article",
		Text:         text,
		URL:          "https://example.com/news/my-article.html",
		DatePublish:  time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		SourceDomain: "example.com",
		Categories:   []string{"tech"},
		Description:  "A test article",
	}
}

func TestChunkArticle_Empty(t *testing.T) {
	chunks := ChunkArticle(testArticle(""), 100)
	if len(chunks) != 0 {
		t.Errorf("ChunkArticle() on empty text = %d chunks, want 0", len(chunks))
	}
}

func TestChunkArticle_SingleChunk(t *testing.T) {
	chunks := ChunkArticle(testArticle("One short paragraph."), 100)
	if len(chunks) != 1 {
		t.Fatalf("ChunkArticle() = %d chunks, want 1", len(chunks))
	}

	c := chunks[0]
	if c.ID != "my-article_0" {
		t.Errorf("chunk ID = %q, want my-article_0", c.ID)
	}
	if c.Metadata["is_first_chunk"] != true {
		t.Error("single chunk should have is_first_chunk=true")
	}
	if c.Metadata["is_last_chunk"] != true {
		t.Error("single chunk should have is_last_chunk=true")
	}
}

func TestChunkArticle_SplitsOnParagraphs(t *testing.T) {
	paragraphs := []string{
		strings.Repeat("a", 60),
		strings.Repeat("b", 60),
		strings.Repeat("c", 60),
	}
	article := testArticle(strings.Join(paragraphs, "\n\n"))

	chunks := ChunkArticle(article, 100)
	if len(chunks) != 3 {
		t.Fatalf("ChunkArticle() = %d chunks, want 3", len(chunks))
	}

	for i, c := range chunks {
		if want := fmt.Sprintf("my-article_%d", i); c.ID != want {
			t.Errorf("chunk %d ID = %q, want %q", i, c.ID, want)
		}
		if c.Text != paragraphs[i] {
			t.Errorf("chunk %d text = %q, want %q", i, c.Text, paragraphs[i])
		}
		if c.ArticleID != "my-article" {
			t.Errorf("chunk %d article ID = %q", i, c.ArticleID)
		}
		if c.Metadata["chunk_index"] != i {
			t.Errorf("chunk %d chunk_index = %v", i, c.Metadata["chunk_index"])
		}
	}
}

func TestChunkArticle_GreedyAccumulation(t *testing.T) {
	// Two 40-byte paragraphs fit a 100-byte chunk together; the third starts a new one.
	paragraphs := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	article := testArticle(strings.Join(paragraphs, "\n\n"))

	chunks := ChunkArticle(article, 100)
	if len(chunks) != 2 {
		t.Fatalf("ChunkArticle() = %d chunks, want 2", len(chunks))
	}
	if want := paragraphs[0] + "\n\n" + paragraphs[1]; chunks[0].Text != want {
		t.Errorf("chunk 0 text = %q, want first two paragraphs", chunks[0].Text)
	}
	if chunks[1].Text != paragraphs[2] {
		t.Errorf("chunk 1 text = %q, want third paragraph", chunks[1].Text)
	}
}

func TestChunkArticle_OversizedParagraphKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 500)
	chunks := ChunkArticle(testArticle(long), 100)
	if len(chunks) != 1 {
		t.Fatalf("ChunkArticle() = %d chunks, want 1 oversized chunk", len(chunks))
	}
	if chunks[0].Text != long {
		t.Error("oversized paragraph should be emitted unsplit")
	}
}

func TestChunkArticle_ReassemblyAndMarkers(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d with some padding text.", i))
	}
	original := strings.Join(paragraphs, "\n\n")

	for _, maxSize := range []int{40, 100, 250, 10000} {
		chunks := ChunkArticle(testArticle(original), maxSize)
		if len(chunks) == 0 {
			t.Fatalf("maxSize=%d: no chunks", maxSize)
		}

		// Dropping the inserted separators must reproduce the original text.
		var joined []string
		firstCount, lastCount := 0, 0
		for i, c := range chunks {
			joined = append(joined, strings.Split(c.Text, "\n\n")...)
			if want := fmt.Sprintf("my-article_%d", i); c.ID != want {
				t.Errorf("maxSize=%d: chunk %d ID = %q, want %q", maxSize, i, c.ID, want)
			}
			if c.Metadata["is_first_chunk"] == true {
				firstCount++
			}
			if c.Metadata["is_last_chunk"] == true {
				lastCount++
			}
		}
		if got := strings.Join(joined, "\n\n"); got != original {
			t.Errorf("maxSize=%d: reassembled text does not match original", maxSize)
		}
		if firstCount != 1 || lastCount != 1 {
			t.Errorf("maxSize=%d: first/last markers = %d/%d, want exactly one each", maxSize, firstCount, lastCount)
		}
	}
}
