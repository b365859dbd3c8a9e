// Package llm hosts the two language-model stages of the routing pipeline:
// intent extraction from the raw prompt and server selection over the
// candidate set. Both degrade to deterministic fallbacks instead of
// propagating service failures.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

// Completer is the narrow contract over the language-model service.
type Completer interface {
	// Complete sends a system and user prompt and returns the raw response
	// text, expected (but not guaranteed) to be a single JSON object.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var _ Completer = (*OllamaCompleter)(nil)

// OllamaCompleter implements Completer over the Ollama chat API.
type OllamaCompleter struct {
	client *api.Client
	model  string
}

// NewOllamaCompleter builds a completer against the given Ollama base URL.
// A zero timeout means no client-side limit.
func NewOllamaCompleter(baseURL, model string, timeout time.Duration) (*OllamaCompleter, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url (%s): %w", baseURL, err)
	}

	return &OllamaCompleter{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Complete implements Completer. Requests are non-streaming with a low
// temperature; both stages want stable, parseable JSON over creativity.
func (c *OllamaCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []api.Message{
		{Role: "system", Content: systemPrompt},
	}
	if strings.TrimSpace(userPrompt) != "" {
		messages = append(messages, api.Message{Role: "user", Content: userPrompt})
	}

	stream := false
	var sb strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": 0.1,
		},
	}, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: ollama completion failed: %w", errors.ErrServiceUnavailable, err)
	}

	return sb.String(), nil
}

// extractJSON trims markdown fences and any prose around the outermost JSON
// object in a model response. Returns false when no object is present.
func extractJSON(response string) (string, bool) {
	s := strings.TrimSpace(response)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
