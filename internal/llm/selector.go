package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/0xnairb/mcp-aws-yolo/internal/vector"
)

// Metadata keys the selector writes into the chosen candidate.
const (
	MetaConfidence      = "llm_confidence"
	MetaReasoning       = "llm_reasoning"
	MetaRecommendedTool = "recommended_tool"
)

// Selector picks one server from a candidate set using the language model.
type Selector struct {
	completer Completer
	logger    hclog.Logger
}

// NewSelector wires a selector over the given completer.
func NewSelector(logger hclog.Logger, completer Completer) *Selector {
	return &Selector{
		completer: completer,
		logger:    logger.Named("selector"),
	}
}

// candidateInfo is the excerpt of a candidate shown to the model.
type candidateInfo struct {
	Index           int                `json:"index"`
	ServerID        string             `json:"server_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	SimilarityScore float64            `json:"similarity_score"`
	Tools           []candidateToolRef `json:"tools"`
	Capabilities    []string           `json:"capabilities"`
}

type candidateToolRef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// selection is the JSON object the model is asked to return.
type selection struct {
	SelectedIndex   int     `json:"selected_index"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
	RecommendedTool string  `json:"recommended_tool"`
}

// Select returns the best candidate for the intent, or nil when none fits.
//
// An empty candidate list short-circuits to nil without calling the model.
// A model verdict of selected_index -1 (or out of range) means "no suitable
// server" and also yields nil. When the model call or parse fails, the
// fallback is the first candidate: similarity order is the only judgment
// still available. On success the chosen candidate's Metadata is annotated
// in place with confidence, reasoning and the recommended tool.
func (s *Selector) Select(ctx context.Context, intent Intent, candidates []vector.Candidate, originalPrompt string) *vector.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	prompt, err := s.buildPrompt(intent, candidates, originalPrompt)
	if err != nil {
		s.logger.Error("failed to build selection prompt, falling back to top candidate", "error", err)
		return &candidates[0]
	}

	response, err := s.completer.Complete(ctx, prompt, "")
	if err != nil {
		s.logger.Error("server selection failed, falling back to top candidate", "error", err)
		return &candidates[0]
	}

	raw, ok := extractJSON(response)
	if !ok {
		s.logger.Warn("selection response carried no JSON object, falling back to top candidate")
		return &candidates[0]
	}

	var sel selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		s.logger.Warn("selection response failed to parse, falling back to top candidate", "error", err)
		return &candidates[0]
	}

	if sel.SelectedIndex < 0 || sel.SelectedIndex >= len(candidates) {
		s.logger.Info("model determined no suitable server", "selected_index", sel.SelectedIndex)
		return nil
	}

	chosen := &candidates[sel.SelectedIndex]
	if chosen.Metadata == nil {
		chosen.Metadata = make(map[string]any)
	}
	chosen.Metadata[MetaConfidence] = sel.Confidence
	chosen.Metadata[MetaReasoning] = sel.Reasoning
	chosen.Metadata[MetaRecommendedTool] = sel.RecommendedTool

	s.logger.Info("model selected server", "server_id", chosen.ServerID, "confidence", sel.Confidence)
	return chosen
}

func (s *Selector) buildPrompt(intent Intent, candidates []vector.Candidate, originalPrompt string) (string, error) {
	infos := make([]candidateInfo, 0, len(candidates))
	for i, c := range candidates {
		tools := make([]candidateToolRef, 0, len(c.Tools))
		for _, tool := range c.Tools {
			tools = append(tools, candidateToolRef{Name: tool.Name, Description: tool.Description})
		}
		infos = append(infos, candidateInfo{
			Index:           i,
			ServerID:        c.ServerID,
			Name:            c.Name,
			Description:     c.Description,
			SimilarityScore: c.SimilarityScore,
			Tools:           tools,
			Capabilities:    c.Capabilities,
		})
	}

	intentJSON, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return "", err
	}
	infosJSON, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are an AI assistant that selects the best tool server for a user's request.

User Intent Analysis: %s
Original Prompt: %q

Available Server Candidates:
%s

Select the best server that matches the user's intent and requirements.
Consider:
1. Relevance to user intent
2. Tool availability and functionality
3. Server capabilities
4. Similarity score

Return a JSON object (NO ADDITIONAL FORMATTING, NO EXPLANATIONS, JUST JSON) with:
- selected_index: index of the best server (0-%d)
- confidence: confidence score 0.0-1.0
- reasoning: explanation for the selection
- recommended_tool: name of the most relevant tool to use

If no server is suitable, return selected_index: -1`,
		intentJSON, originalPrompt, infosJSON, len(candidates)-1), nil
}
