package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
)

const defaultEmbeddingTimeout = 30 * time.Second

// DefaultEmbeddingDimension is used when the configured model is not in the
// known dimension table.
const DefaultEmbeddingDimension = 768

// modelDimensions maps known embedding model names to their output vector
// size. The index collection is created with this dimension, so a wrong entry
// here surfaces as a collection-size mismatch at startup.
var modelDimensions = map[string]int{
	"jina-embeddings-v2": 768,
	"jina-embeddings-v3": 1024,
}

// EmbeddingsClient is a client for the Jina embeddings API.
type EmbeddingsClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewEmbeddingsClient creates a new embeddings client. baseURL may be empty
// to use the public Jina endpoint.
func NewEmbeddingsClient(baseURL, apiKey, model string) *EmbeddingsClient {
	if baseURL == "" {
		baseURL = "https://api.jina.ai"
	}
	return &EmbeddingsClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: defaultEmbeddingTimeout},
	}
}

// Dimension returns the output vector size for the configured model.
// Unknown models default to DefaultEmbeddingDimension.
func (c *EmbeddingsClient) Dimension() int {
	if dim, ok := modelDimensions[c.Model]; ok {
		return dim
	}
	return DefaultEmbeddingDimension
}

// embeddingsRequest is the request payload for the embeddings API.
type embeddingsRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task"`
	Input []string `json:"input"`
}

// embeddingsResponse is the response from the embeddings API.
type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedTexts generates embeddings for the given texts, one vector per valid
// input, in input order. Empty entries are filtered out before the upstream
// call, so the result may be shorter than the input; the discrepancy is
// logged. An entirely empty input returns ErrInvalidInput.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty text list", ErrInvalidInput)
	}

	valid := make([]string, 0, len(texts))
	for _, text := range texts {
		if text != "" {
			valid = append(valid, text)
		}
	}
	if len(valid) != len(texts) {
		logger.WarnContext(ctx, "filtered out invalid texts", "filtered", len(texts)-len(valid), "total", len(texts))
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no valid texts to embed", ErrInvalidInput)
	}

	payload := embeddingsRequest{
		Model: c.Model,
		Task:  "text-matching",
		Input: valid,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Service: "embeddings", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var embResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(embResp.Data) != len(valid) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(valid), len(embResp.Data))
	}

	result := make([][]float32, len(embResp.Data))
	for i, data := range embResp.Data {
		result[i] = data.Embedding
	}

	logger.DebugContext(ctx, "generated embeddings", "count", len(result), "model", c.Model)
	return result, nil
}

// EmbedText generates an embedding for a single text.
func (c *EmbeddingsClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text must be non-empty", ErrInvalidInput)
	}
	embeddings, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}
