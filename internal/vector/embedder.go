package vector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	// Embed returns the embedding for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension reports the embedding dimensionality, discovered once via a
	// probe call and held fixed for the life of the collection.
	Dimension(ctx context.Context) (uint64, error)
}

var _ Embedder = (*OllamaEmbedder)(nil)

// OllamaEmbedder produces embeddings through the Ollama HTTP API.
type OllamaEmbedder struct {
	client *api.Client
	model  string

	mu  sync.Mutex
	dim uint64
}

// NewOllamaEmbedder builds an embedder against the given Ollama base URL.
// A zero timeout means no client-side limit.
func NewOllamaEmbedder(baseURL, model string, timeout time.Duration) (*OllamaEmbedder, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url (%s): %w", baseURL, err)
	}

	return &OllamaEmbedder{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Embed implements Embedder.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ollama embedding failed: %w", errors.ErrServiceUnavailable, err)
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Dimension implements Embedder. The first call probes the model with a
// throwaway input; subsequent calls return the cached size.
func (e *OllamaEmbedder) Dimension(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dim > 0 {
		return e.dim, nil
	}

	vec, err := e.Embed(ctx, "dimension probe")
	if err != nil {
		return 0, err
	}
	if len(vec) == 0 {
		return 0, fmt.Errorf("%w: embedding model %q returned an empty vector", errors.ErrServiceUnavailable, e.model)
	}

	e.dim = uint64(len(vec))
	return e.dim, nil
}
