package vector

import (
	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
)

// Candidate is a server descriptor scored against one specific query. It
// lives for the duration of a single routing request; Metadata is a mutable
// annotation bag the selector writes its confidence and reasoning into.
type Candidate struct {
	ServerID        string
	Name            string
	Description     string
	SimilarityScore float64
	Tools           []registry.ToolRef
	Capabilities    []string
	Metadata        map[string]any
}
