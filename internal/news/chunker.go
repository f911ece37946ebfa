package news

import (
	"fmt"
	"regexp"
)

// DefaultMaxChunkSize bounds chunk length in bytes. Sized so that title +
// description + chunk text stays comfortably inside the embedding model's
// context window.
const DefaultMaxChunkSize = 1000

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// ChunkArticle splits an article's text into chunks of at most maxSize bytes,
// aligned to paragraph boundaries. Paragraphs are accumulated greedily: when
// appending the next paragraph would push the buffer over maxSize and the
// buffer is non-empty, the buffer is closed as a chunk and the paragraph
// starts a new one. A single paragraph longer than maxSize is emitted as one
// oversized chunk rather than force-split; for news prose this keeps sentences
// intact and the case is rare enough not to matter for retrieval quality.
//
// Every chunk carries the full article metadata. Exactly one chunk has
// is_first_chunk set and exactly one has is_last_chunk set (the same chunk
// when the article fits in one). Empty text yields no chunks.
func ChunkArticle(article Article, maxSize int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	var paragraphs []string
	for _, p := range paragraphSep.Split(article.Text, -1) {
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []Chunk
	current := ""
	index := 0

	flush := func() {
		chunks = append(chunks, newChunk(article, index, current))
		index++
	}

	for _, paragraph := range paragraphs {
		if len(current)+len(paragraph) > maxSize && current != "" {
			flush()
			current = paragraph
		} else if current != "" {
			current += "\n\n" + paragraph
		} else {
			current = paragraph
		}
	}
	if current != "" {
		flush()
	}

	if len(chunks) > 0 {
		chunks[len(chunks)-1].Metadata["is_last_chunk"] = true
	}
	return chunks
}

func newChunk(article Article, index int, text string) Chunk {
	return Chunk{
		ID:           fmt.Sprintf("%s_%d", article.ID, index),
		ArticleID:    article.ID,
		Title:        article.Title,
		Text:         text,
		URL:          article.URL,
		DatePublish:  article.DatePublish,
		SourceDomain: article.SourceDomain,
		Categories:   article.Categories,
		Description:  article.Description,
		Metadata: map[string]any{
			"chunk_index":    index,
			"is_first_chunk": index == 0,
			"is_last_chunk":  false,
		},
	}
}
