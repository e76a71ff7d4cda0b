// Package toolbox provides a named registry of executable tools. Agents use
// a ToolBox to declare tools to the provider and to dispatch tool calls.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avelez/sleuth/pkg/chats/content"
)

// Handler executes a tool with the given JSON input and returns a text result.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool is an executable tool with a name, description, JSON Schema, and handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// ToolBox holds a set of tools keyed by name.
type ToolBox struct {
	tools map[string]Tool
}

// New creates an empty ToolBox.
func New() *ToolBox {
	return &ToolBox{tools: make(map[string]Tool)}
}

// Register adds tools to the box, replacing any existing tool with the same name.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns the named tool and whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Merge registers all tools from other into this box.
func (tb *ToolBox) Merge(other *ToolBox) {
	for _, t := range other.tools {
		tb.tools[t.Name] = t
	}
}

// Tools returns the registered tools as a slice.
func (tb *ToolBox) Tools() []Tool {
	out := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		out = append(out, t)
	}
	return out
}

// Call dispatches a tool call and returns its result. Missing tools and
// handler errors become IsError results rather than Go errors so the model
// can see and react to the failure.
func (tb *ToolBox) Call(ctx context.Context, tc content.ToolCall) content.ToolResult {
	t, ok := tb.tools[tc.Name]
	if !ok {
		return content.ToolResult{
			CallID:  tc.ID,
			Content: fmt.Sprintf("tool not found: %s", tc.Name),
			IsError: true,
		}
	}

	result, err := t.Handler(ctx, json.RawMessage(tc.Args))
	if err != nil {
		return content.ToolResult{CallID: tc.ID, Content: err.Error(), IsError: true}
	}

	return content.ToolResult{CallID: tc.ID, Content: result}
}
