package session

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ContentType tags the two content variants a tool call can return.
type ContentType string

const (
	// ContentText is plain text content.
	ContentText ContentType = "text"

	// ContentStructured is any non-text content, kept as an opaque value.
	ContentStructured ContentType = "structured"
)

// ToolContent is one item of a tool call result, decoded once at the protocol
// boundary instead of probed ad hoc at every call site.
type ToolContent struct {
	Type  ContentType `json:"type"`
	Text  string      `json:"text,omitempty"`
	Value any         `json:"value,omitempty"`
}

// Unwrap returns the item's payload: the text for text content, the opaque
// value otherwise.
func (c ToolContent) Unwrap() any {
	if c.Type == ContentText {
		return c.Text
	}
	return c.Value
}

// UnwrapContent flattens a result for callers: a single item becomes its
// scalar payload, multiple items an ordered list of payloads, no items nil.
func UnwrapContent(items []ToolContent) any {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0].Unwrap()
	default:
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, item.Unwrap())
		}
		return out
	}
}

func contentFromMCP(content []mcp.Content) []ToolContent {
	out := make([]ToolContent, 0, len(content))
	for _, item := range content {
		if text, ok := item.(mcp.TextContent); ok {
			out = append(out, ToolContent{Type: ContentText, Text: text.Text})
			continue
		}
		out = append(out, ToolContent{Type: ContentStructured, Value: item})
	}
	return out
}

// ToolDescriptor describes one tool discovered live from a running server,
// including a parameter map derived from the input schema for richer
// downstream validation.
type ToolDescriptor struct {
	Name                  string            `json:"name"`
	Description           string            `json:"description"`
	InputSchema           map[string]any    `json:"input_schema"`
	Parameters            map[string]any    `json:"parameters,omitempty"`
	RequiredParameters    []string          `json:"required_parameters,omitempty"`
	ParameterTypes        map[string]string `json:"parameter_types,omitempty"`
	ParameterDescriptions map[string]string `json:"parameter_descriptions,omitempty"`
}

func toolFromMCP(tool mcp.Tool) ToolDescriptor {
	desc := ToolDescriptor{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: map[string]any{
			"type": tool.InputSchema.Type,
		},
	}

	if len(tool.InputSchema.Required) > 0 {
		desc.RequiredParameters = tool.InputSchema.Required
		desc.InputSchema["required"] = tool.InputSchema.Required
	}

	if props := tool.InputSchema.Properties; len(props) > 0 {
		desc.InputSchema["properties"] = props
		desc.Parameters = props
		desc.ParameterTypes = make(map[string]string, len(props))
		desc.ParameterDescriptions = make(map[string]string, len(props))

		for name, raw := range props {
			prop, ok := raw.(map[string]any)
			if !ok {
				desc.ParameterTypes[name] = "string"
				desc.ParameterDescriptions[name] = ""
				continue
			}
			if t, ok := prop["type"].(string); ok {
				desc.ParameterTypes[name] = t
			} else {
				desc.ParameterTypes[name] = "string"
			}
			if d, ok := prop["description"].(string); ok {
				desc.ParameterDescriptions[name] = d
			} else {
				desc.ParameterDescriptions[name] = ""
			}
		}
	}

	return desc
}
