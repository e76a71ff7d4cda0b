// Package content defines the content parts a message is assembled from.
package content

// Part is one piece of content within a message. Packages outside chats can
// implement Part to carry custom content through a conversation.
type Part interface {
	PartKind() string
}

// Text is a plain text part.
type Text struct {
	Text string
}

func (t Text) PartKind() string { return "text" }

// ToolCall is an assistant request to invoke a named tool. Args holds the
// raw JSON argument string so it round-trips without re-serialization.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

func (tc ToolCall) PartKind() string { return "tool_call" }

// ToolResult carries the outcome of a ToolCall back to the provider.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
}

func (tr ToolResult) PartKind() string { return "tool_result" }
