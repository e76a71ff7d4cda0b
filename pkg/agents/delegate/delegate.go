// Package delegate wraps a NamedAgent as a toolbox.Tool, the agent-as-tool
// pattern. A lead agent invokes a specialist through its normal tool-calling
// mechanism; the specialist runs its own loop privately and only the final
// text reply surfaces as the tool result.
package delegate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avelez/sleuth/pkg/agents"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/avelez/sleuth/pkg/tools/toolbox"
)

// taskSchema accepts a single required "task" string describing the work to hand off.
var taskSchema = json.RawMessage(`{"type":"object","properties":{"task":{"type":"string","description":"The task to delegate"}},"required":["task"]}`)

type taskInput struct {
	Task string `json:"task"`
}

// AgentTool adapts a NamedAgent into a callable tool. The tool name is the
// agent's name.
type AgentTool struct {
	agent       agents.NamedAgent
	description string
}

// New creates an AgentTool for the given agent. The description tells the
// lead agent when to delegate to this specialist.
func New(agent agents.NamedAgent, description string) *AgentTool {
	return &AgentTool{agent: agent, description: description}
}

// Tool returns the toolbox.Tool wrapping the agent.
func (at *AgentTool) Tool() toolbox.Tool {
	return toolbox.Tool{
		Name:        at.agent.AgentName(),
		Description: at.description,
		InputSchema: taskSchema,
		Handler:     at.handle,
	}
}

// handle parses the task, feeds it to the sub-agent's chat, runs the agent,
// and returns the final text reply.
func (at *AgentTool) handle(ctx context.Context, input json.RawMessage) (string, error) {
	var ti taskInput
	if err := json.Unmarshal(input, &ti); err != nil {
		return "", fmt.Errorf("delegate: invalid input: %w", err)
	}

	at.agent.AgentChat().Append(message.NewText("user", role.User, ti.Task))

	reply, err := at.agent.Run(ctx)
	if err != nil {
		return "", err
	}

	return reply.Text(), nil
}
