// Package react implements the ReAct (reason + act) loop: repeated cycles of
// LLM completion and tool execution until the model answers without
// requesting a tool.
package react

import (
	"context"
	"errors"

	"github.com/avelez/sleuth/pkg/agents"
	"github.com/avelez/sleuth/pkg/chats/message"
)

var (
	_ agents.Agent      = (*Agent)(nil)
	_ agents.NamedAgent = (*Agent)(nil)
)

// ErrMaxIterations is returned when the loop hits MaxIterations without the
// model producing a final answer.
var ErrMaxIterations = errors.New("react: max iterations reached")

// Options configures the loop.
type Options struct {
	// MaxIterations caps the number of reason-act cycles. Zero means no cap.
	MaxIterations int
}

// Agent drives the ReAct loop over an embedded agents.Base.
type Agent struct {
	agents.Base
	Options Options
}

// New creates a ReAct agent from a Base and options.
func New(base agents.Base, opts Options) *Agent {
	return &Agent{Base: base, Options: opts}
}

// Run alternates Complete and CallTools until a reply carries no tool calls,
// then returns that reply as the final answer.
func (a *Agent) Run(ctx context.Context) (message.Message, error) {
	for i := 0; a.Options.MaxIterations == 0 || i < a.Options.MaxIterations; i++ {
		reply, err := a.Complete(ctx)
		if err != nil {
			return message.Message{}, err
		}

		if len(reply.ToolCalls()) == 0 {
			return reply, nil
		}

		a.CallTools(ctx, reply)
	}

	return message.Message{}, ErrMaxIterations
}
