package router

import (
	"github.com/0xnairb/mcp-aws-yolo/internal/llm"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
)

// ServerMatch is the routed server as exposed to callers, carrying the
// similarity evidence alongside the tool surface known at routing time.
type ServerMatch struct {
	ServerID        string                   `json:"server_id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	SimilarityScore float64                  `json:"similarity_score"`
	Capabilities    []string                 `json:"capabilities,omitempty"`
	Tools           []session.ToolDescriptor `json:"tools"`
}

// RoutingResult is the full outcome of routing one prompt. Failures are
// reported in-band: Success false plus a human-readable Error, so every
// surface can serialize the same shape.
type RoutingResult struct {
	Success         bool         `json:"success"`
	Server          *ServerMatch `json:"server,omitempty"`
	Confidence      float64      `json:"confidence,omitempty"`
	Reasoning       string       `json:"reasoning,omitempty"`
	RecommendedTool string       `json:"recommended_tool,omitempty"`
	Intent          *llm.Intent  `json:"intent,omitempty"`
	ExecutionTime   float64      `json:"execution_time"`
	Error           string       `json:"error,omitempty"`
}

// ExecutionResult is the outcome of one tool invocation.
type ExecutionResult struct {
	Success    bool           `json:"success"`
	Result     any            `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	ServerID   string         `json:"server_id"`
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// HealthStatus summarizes component health for the health surfaces.
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Servers    int               `json:"servers"`
}
