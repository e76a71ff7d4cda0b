// Package agents defines the Agent interface and the Base struct concrete
// agent types embed for shared behaviour: completing against a model,
// executing tool calls, and collecting declared tools.
package agents

import (
	"context"
	"fmt"

	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/content"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/avelez/sleuth/pkg/modeladapter"
	"github.com/avelez/sleuth/pkg/tools/toolbox"
)

// Agent drives one execution loop and returns the final message.
type Agent interface {
	Run(ctx context.Context) (message.Message, error)
}

// NamedAgent extends Agent with name and chat accessors so an agent can be
// composed into teams (delegation) where the coordinator needs to feed its
// chat directly.
type NamedAgent interface {
	Agent
	AgentName() string
	AgentChat() *chat.Chat
}

// Base holds the pieces every agent orchestrates: a completer, toolboxes,
// and a chat. Base is not safe for concurrent use; callers must synchronize
// externally.
type Base struct {
	Name      string
	Completer modeladapter.Completer
	ToolBoxes []*toolbox.ToolBox
	Chat      *chat.Chat
}

// NewBase creates a Base with the given name, completer, chat, and toolboxes.
func NewBase(name string, c modeladapter.Completer, ch *chat.Chat, tbs ...*toolbox.ToolBox) Base {
	return Base{Name: name, Completer: c, Chat: ch, ToolBoxes: tbs}
}

// AgentName returns the agent's name.
func (b *Base) AgentName() string { return b.Name }

// AgentChat returns the agent's conversation.
func (b *Base) AgentChat() *chat.Chat { return b.Chat }

// Complete sends the chat and the declared tools to the completer and
// appends the reply to the conversation. The reply's Sender is the agent name.
func (b *Base) Complete(ctx context.Context) (message.Message, error) {
	reply, err := b.Completer.Complete(ctx, b.Chat, b.Tools())
	if err != nil {
		return message.Message{}, err
	}

	reply.Sender = b.Name
	b.Chat.Append(reply)

	return reply, nil
}

// CallTools executes every tool call in msg and appends each result to the
// chat. It returns nil when msg has no tool calls.
func (b *Base) CallTools(ctx context.Context, msg message.Message) []content.ToolResult {
	calls := msg.ToolCalls()
	if len(calls) == 0 {
		return nil
	}

	results := make([]content.ToolResult, 0, len(calls))
	for _, tc := range calls {
		result := b.callTool(ctx, tc)
		results = append(results, result)
		b.Chat.Append(message.New(b.Name, role.Tool, result))
	}

	return results
}

// Tools returns the tools of all registered toolboxes.
func (b *Base) Tools() []toolbox.Tool {
	var tools []toolbox.Tool
	for _, tb := range b.ToolBoxes {
		tools = append(tools, tb.Tools()...)
	}
	return tools
}

// callTool searches the toolboxes in order for the named tool and runs it.
func (b *Base) callTool(ctx context.Context, tc content.ToolCall) content.ToolResult {
	for _, tb := range b.ToolBoxes {
		if _, ok := tb.Get(tc.Name); ok {
			return tb.Call(ctx, tc)
		}
	}

	return content.ToolResult{
		CallID:  tc.ID,
		Content: fmt.Sprintf("tool not found: %s", tc.Name),
		IsError: true,
	}
}
