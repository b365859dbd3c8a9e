package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Intent is the structured reading of a user prompt. Produced once per
// request and read-only downstream.
type Intent struct {
	Goal         string         `json:"goal"`
	Capabilities []string       `json:"capabilities"`
	Domain       string         `json:"domain"`
	Parameters   map[string]any `json:"parameters"`
	Urgency      string         `json:"urgency"`
	Keywords     []string       `json:"keywords"`
}

const intentSystemPrompt = `You are an AI assistant that analyzes user prompts to extract intent and requirements.
Given a user prompt, extract:
1. Primary intent/goal
2. Required capabilities
3. Domain/category
4. Key parameters or constraints
5. Urgency level

Return a JSON object with these fields (NO ADDITIONAL FORMATTING, NO EXPLANATIONS, JUST JSON):
- goal: string describing the main goal
- capabilities: list of required capabilities
- domain: string describing the domain/category
- parameters: dict of key parameters
- urgency: "low", "medium", or "high"
- keywords: list of important keywords from the prompt

Example:
User: "I need to deploy a new web application on AWS with auto-scaling"
Response: {
  "goal": "deploy web application with auto-scaling",
  "capabilities": ["deployment", "infrastructure", "auto-scaling", "aws"],
  "domain": "cloud-infrastructure",
  "parameters": {
    "platform": "aws",
    "service_type": "web-application",
    "scaling": "auto"
  },
  "urgency": "medium",
  "keywords": ["deploy", "web", "application", "aws", "auto-scaling"]
}`

// Analyzer extracts structured intent from free text.
type Analyzer struct {
	completer Completer
	logger    hclog.Logger
}

// NewAnalyzer wires an analyzer over the given completer.
func NewAnalyzer(logger hclog.Logger, completer Completer) *Analyzer {
	return &Analyzer{
		completer: completer,
		logger:    logger.Named("intent"),
	}
}

// Analyze returns the intent behind prompt. It never fails: any service or
// parse error degrades to the deterministic fallback, making this the
// terminal error boundary for intent extraction.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) Intent {
	response, err := a.completer.Complete(ctx, intentSystemPrompt, prompt)
	if err != nil {
		a.logger.Error("intent analysis failed, using fallback", "error", err)
		return FallbackIntent(prompt)
	}

	raw, ok := extractJSON(response)
	if !ok {
		a.logger.Warn("intent response carried no JSON object, using fallback")
		return FallbackIntent(prompt)
	}

	var intent Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		a.logger.Warn("intent response failed to parse, using fallback", "error", err)
		return FallbackIntent(prompt)
	}

	if strings.TrimSpace(intent.Goal) == "" {
		intent.Goal = prompt
	}
	return intent
}

// FallbackIntent is the deterministic degradation used when the language
// model is unavailable or returns garbage.
func FallbackIntent(prompt string) Intent {
	keywords := strings.Fields(prompt)
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	return Intent{
		Goal:         prompt,
		Capabilities: []string{},
		Domain:       "general",
		Parameters:   map[string]any{},
		Urgency:      "medium",
		Keywords:     keywords,
	}
}
