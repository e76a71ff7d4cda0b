package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/content"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, response string, captured *map[string]any) *Adapter {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, captured))
		}

		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	a := New(srv.URL, "sk-ant", "claude-sonnet-4-5")
	a.Client = srv.Client()

	return a
}

func TestCompleteText(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{
		"content":[{"type":"text","text":"hi back"}],
		"stop_reason":"end_turn",
		"usage":{"input_tokens":9,"output_tokens":3}
	}`, &captured)

	c := chat.New(
		message.NewText("", role.System, "be terse"),
		message.NewText("user", role.User, "hi"),
	)

	reply, err := a.Complete(context.Background(), c, nil)
	require.NoError(t, err)

	assert.Equal(t, "hi back", reply.Text())

	// System prompt travels in the top-level field, not the messages array.
	assert.Equal(t, "be terse", captured["system"])
	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 1)

	assert.Equal(t, 9, a.Usage.Total().InputTokens)
}

func TestCompleteToolUse(t *testing.T) {
	a := newServer(t, `{
		"content":[
			{"type":"text","text":"looking it up"},
			{"type":"tool_use","id":"tu_1","name":"firecrawl_scrape","input":{"url":"https://a.dev"}}
		],
		"stop_reason":"tool_use",
		"usage":{"input_tokens":1,"output_tokens":1}
	}`, nil)

	reply, err := a.Complete(context.Background(), chat.New(message.NewText("user", role.User, "scrape a.dev")), nil)
	require.NoError(t, err)

	calls := reply.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "firecrawl_scrape", calls[0].Name)
	assert.JSONEq(t, `{"url":"https://a.dev"}`, calls[0].Args)
}

func TestCompleteToolResultRidesAsUser(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{"content":[{"type":"text","text":"ok"}],"usage":{}}`, &captured)

	c := chat.New(
		message.NewText("user", role.User, "go"),
		message.New("agent", role.Assistant, content.ToolCall{ID: "tu_1", Name: "scrape", Args: "{}"}),
		message.New("agent", role.Tool, content.ToolResult{CallID: "tu_1", Content: "# page"}),
	)

	_, err := a.Complete(context.Background(), c, nil)
	require.NoError(t, err)

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 3)

	last := msgs[2].(map[string]any)
	assert.Equal(t, "user", last["role"])

	block := last["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", block["type"])
	assert.Equal(t, "tu_1", block["tool_use_id"])
}

func TestCompleteMergesConsecutiveSameRoleBlocks(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{"content":[{"type":"text","text":"ok"}],"usage":{}}`, &captured)

	c := chat.New(
		message.New("agent", role.Assistant,
			content.Text{Text: "part one"},
			content.Text{Text: "part two"},
		),
	)

	_, err := a.Complete(context.Background(), c, nil)
	require.NoError(t, err)

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].(map[string]any)["content"].([]any), 2)
}
