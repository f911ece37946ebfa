package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_index.go -package=mocks github.com/RahulGopathi/NewsChatbot-BE/internal/vectorstore VectorIndex

import (
	"context"
	"time"
)

// SearchParams holds the filter and limit parameters for a similarity search.
// Filters present are ANDed together.
type SearchParams struct {
	// Limit caps the number of results. Zero means the store's configured top-K.
	Limit int
	// StartDate/EndDate bound the publish date range when non-nil.
	StartDate *time.Time
	EndDate   *time.Time
	// SourceDomains restricts results to these source domains.
	SourceDomains []string
	// Categories restricts results to documents carrying any of these categories.
	Categories []string
}

// VectorIndex defines the retrieval operations built on top of the vector
// index engine. Documents are payload maps; every stored payload carries an
// "original_id" field preserving the caller-assigned id verbatim.
type VectorIndex interface {
	// EnsureReady creates the backing collection and its payload indexes if
	// absent, and validates the configured vector size. Idempotent; safe to
	// call on every startup.
	EnsureReady(ctx context.Context) error

	// Upsert stores documents with their embeddings. documents and embeddings
	// must be equal-length and order-aligned. Documents missing an "id" field
	// are skipped with a warning, not an error.
	Upsert(ctx context.Context, documents []map[string]any, embeddings [][]float32) error

	// Delete removes documents by their original ids. Absent ids are no-ops.
	Delete(ctx context.Context, ids []string) error

	// Search returns payloads of the most similar documents, most-similar
	// first, honoring the filters in params.
	Search(ctx context.Context, embedding []float32, params SearchParams) ([]map[string]any, error)

	// SearchRecent is a convenience for Search over the last `days` days.
	SearchRecent(ctx context.Context, embedding []float32, days int, limit int) ([]map[string]any, error)

	// GetByID retrieves a single document payload by its original id.
	// Returns (nil, nil) when the document is absent.
	GetByID(ctx context.Context, id string) (map[string]any, error)
}
