package openai

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
	"github.com/avelez/sleuth/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer returns an Adapter wired to a test server that records the
// request body and replies with response.
func newServer(t *testing.T, response string, captured *map[string]any) *Adapter {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, captured))
		}

		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	a := New(srv.URL, "sk-test", "gpt-4o-mini")
	a.Client = srv.Client()

	return a
}

func TestCompleteText(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{
		"choices":[{"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],
		"usage":{"prompt_tokens":12,"completion_tokens":4}
	}`, &captured)

	c := chat.New(
		message.NewText("", role.System, "be helpful"),
		message.NewText("user", role.User, "hi"),
	)

	reply, err := a.Complete(context.Background(), c, nil)
	require.NoError(t, err)

	assert.Equal(t, role.Assistant, reply.Role)
	assert.Equal(t, "hello there", reply.Text())

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

	total := a.Usage.Total()
	assert.Equal(t, 12, total.InputTokens)
	assert.Equal(t, 4, total.OutputTokens)
}

func TestCompleteToolCalls(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{
		"choices":[{"message":{"role":"assistant","content":null,"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"firecrawl_search","arguments":"{\"query\":\"x\"}"}}
		]},"finish_reason":"tool_calls"}],
		"usage":{"prompt_tokens":1,"completion_tokens":1}
	}`, &captured)

	tools := []toolbox.Tool{{
		Name:        "firecrawl_search",
		Description: "search the web",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}}}`),
	}}

	reply, err := a.Complete(context.Background(), chat.New(message.NewText("user", role.User, "search x")), tools)
	require.NoError(t, err)

	calls := reply.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "firecrawl_search", calls[0].Name)
	assert.JSONEq(t, `{"query":"x"}`, calls[0].Args)

	declared := captured["tools"].([]any)
	require.Len(t, declared, 1)
}

func TestCompleteRoundTripsToolResults(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{
		"choices":[{"message":{"role":"assistant","content":"done"}}],
		"usage":{}
	}`, &captured)

	c := chat.New(
		message.NewText("user", role.User, "go"),
		message.New("agent", role.Assistant, content.ToolCall{ID: "call_1", Name: "scrape", Args: "{}"}),
		message.New("agent", role.Tool, content.ToolResult{CallID: "call_1", Content: "# page"}),
	)

	_, err := a.Complete(context.Background(), c, nil)
	require.NoError(t, err)

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 3)

	toolMsg := msgs[2].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
	assert.Equal(t, "# page", toolMsg["content"])
}

func TestCompleteStructuredOutputFormat(t *testing.T) {
	var captured map[string]any
	a := newServer(t, `{"choices":[{"message":{"role":"assistant","content":"{}"}}],"usage":{}}`, &captured)
	a.ResponseSchema = json.RawMessage(`{"type":"object"}`)
	a.ResponseSchemaName = "company_analysis"

	_, err := a.Complete(context.Background(), chat.New(message.NewText("user", role.User, "analyze")), nil)
	require.NoError(t, err)

	rf := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", rf["type"])
	assert.Equal(t, "company_analysis", rf["json_schema"].(map[string]any)["name"])
}

func TestCompleteEmptyChoices(t *testing.T) {
	a := newServer(t, `{"choices":[],"usage":{}}`, nil)

	_, err := a.Complete(context.Background(), chat.New(message.NewText("user", role.User, "hi")), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}
