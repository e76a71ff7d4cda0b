// Package message defines a single conversation turn.
package message

import (
	"strings"

	"github.com/avelez/sleuth/pkg/chats/content"
	"github.com/avelez/sleuth/pkg/chats/role"
)

// Message is one turn in a conversation. It is a value type that copies
// cheaply; Parts are shared, not deep-copied.
type Message struct {
	Sender string
	Role   role.Role
	Parts  []content.Part
}

// New creates a message from the given sender, role, and parts.
func New(sender string, r role.Role, parts ...content.Part) Message {
	return Message{Sender: sender, Role: r, Parts: parts}
}

// NewText creates a message holding a single text part.
func NewText(sender string, r role.Role, text string) Message {
	return New(sender, r, content.Text{Text: text})
}

// Text concatenates all text parts of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if t, ok := p.(content.Text); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool call parts of the message, if any.
func (m Message) ToolCalls() []content.ToolCall {
	var calls []content.ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(content.ToolCall); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// ToolResults returns the tool result parts of the message, if any.
func (m Message) ToolResults() []content.ToolResult {
	var results []content.ToolResult
	for _, p := range m.Parts {
		if tr, ok := p.(content.ToolResult); ok {
			results = append(results, tr)
		}
	}
	return results
}
