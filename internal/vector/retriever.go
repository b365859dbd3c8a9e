package vector

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
)

// Retriever turns a natural-language query into ranked server candidates.
type Retriever struct {
	embedder Embedder
	store    Store
	logger   hclog.Logger
}

// NewRetriever wires a retriever over the given embedder and store.
func NewRetriever(logger hclog.Logger, embedder Embedder, store Store) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger.Named("retriever"),
	}
}

// Search embeds query and returns up to limit candidates scoring at or above
// threshold, best first. An empty result is not an error; the router owns the
// widening retry.
func (r *Retriever) Search(ctx context.Context, query string, limit int, threshold float64) ([]Candidate, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.store.Search(ctx, vec, uint64(limit), float32(threshold))
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		// The store already filters by threshold; re-check to keep the
		// guarantee independent of backend behavior.
		if float64(hit.Score) < threshold {
			continue
		}
		candidates = append(candidates, candidateFromHit(hit))
	}

	r.logger.Info("candidate search complete", "query", query, "candidates", len(candidates), "threshold", threshold)
	return candidates, nil
}

func candidateFromHit(hit Hit) Candidate {
	payload := hit.Payload

	c := Candidate{
		ServerID:        stringField(payload, "server_id", "unknown"),
		Name:            stringField(payload, "name", "Unknown Server"),
		Description:     stringField(payload, "description", ""),
		SimilarityScore: float64(hit.Score),
		Metadata:        payload,
	}

	if caps, ok := payload["capabilities"].([]any); ok {
		for _, item := range caps {
			if s, ok := item.(string); ok {
				c.Capabilities = append(c.Capabilities, s)
			}
		}
	}

	if tools, ok := payload["tools"].([]any); ok {
		for _, item := range tools {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			c.Tools = append(c.Tools, registry.ToolRef{
				Name:        stringField(entry, "name", ""),
				Description: stringField(entry, "description", ""),
			})
		}
	}

	return c
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
