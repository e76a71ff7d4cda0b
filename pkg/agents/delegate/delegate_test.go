package delegate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent replies with a fixed answer after recording what landed in its chat.
type stubAgent struct {
	name  string
	chat  *chat.Chat
	reply string
	err   error
}

func (s *stubAgent) AgentName() string    { return s.name }
func (s *stubAgent) AgentChat() *chat.Chat { return s.chat }

func (s *stubAgent) Run(_ context.Context) (message.Message, error) {
	if s.err != nil {
		return message.Message{}, s.err
	}
	return message.NewText(s.name, role.Assistant, s.reply), nil
}

func TestToolShape(t *testing.T) {
	at := New(&stubAgent{name: "analyst", chat: chat.New()}, "analyzes company pages")

	tool := at.Tool()
	assert.Equal(t, "analyst", tool.Name)
	assert.Equal(t, "analyzes company pages", tool.Description)
	assert.Contains(t, string(tool.InputSchema), `"task"`)
}

func TestHandleRunsSubAgent(t *testing.T) {
	sub := &stubAgent{name: "analyst", chat: chat.New(), reply: "pricing is usage based"}
	at := New(sub, "")

	out, err := at.Tool().Handler(context.Background(), json.RawMessage(`{"task":"analyze acme pricing"}`))
	require.NoError(t, err)
	assert.Equal(t, "pricing is usage based", out)

	// The task landed in the sub-agent's own chat as a user message.
	last, ok := sub.chat.Last()
	require.True(t, ok)
	assert.Equal(t, role.User, last.Role)
	assert.Equal(t, "analyze acme pricing", last.Text())
}

func TestHandleInvalidInput(t *testing.T) {
	at := New(&stubAgent{name: "x", chat: chat.New()}, "")

	_, err := at.Tool().Handler(context.Background(), json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestHandleSubAgentError(t *testing.T) {
	boom := errors.New("sub agent failed")
	at := New(&stubAgent{name: "x", chat: chat.New(), err: boom}, "")

	_, err := at.Tool().Handler(context.Background(), json.RawMessage(`{"task":"t"}`))
	assert.ErrorIs(t, err, boom)
}
