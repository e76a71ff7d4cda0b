package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/sleuth/pkg/tools/toolbox"
)

// fakeOpenAI serves scripted Chat Completions responses in call order and
// records each request body.
type fakeOpenAI struct {
	t         *testing.T
	responses []string
	requests  []map[string]any
}

func (f *fakeOpenAI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var req map[string]any
		require.NoError(f.t, json.Unmarshal(body, &req))
		f.requests = append(f.requests, req)

		i := len(f.requests) - 1
		require.Less(f.t, i, len(f.responses), "unexpected extra LLM call")
		_, _ = w.Write([]byte(f.responses[i]))
	}
}

func textResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": text}},
		},
		"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1},
	})
	return string(b)
}

func toolCallResponse(name, args string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{
				"role":    "assistant",
				"content": nil,
				"tool_calls": []map[string]any{
					{"id": "call_1", "type": "function", "function": map[string]string{
						"name": name, "arguments": args,
					}},
				},
			}},
		},
		"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1},
	})
	return string(b)
}

func newEngine(t *testing.T, fake *fakeOpenAI, mutate func(*Config)) *Engine {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := Config{
		Providers: []ProviderConfig{
			{Name: "main", Kind: "openai", BaseURL: srv.URL, APIKey: "sk-x", Model: "gpt-4o-mini"},
		},
		Agents: []AgentConfig{
			{Name: "assistant", Provider: "main", Instructions: "You are a helpful assistant."},
		},
		EntryAgent: "assistant",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	e, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	return e
}

func TestSessionSend(t *testing.T) {
	fake := &fakeOpenAI{t: t, responses: []string{textResponse("hello back")}}
	e := newEngine(t, fake, nil)

	sess, err := e.NewSession("")
	require.NoError(t, err)
	assert.Equal(t, "assistant", sess.AgentName())
	assert.NotEmpty(t, sess.ID())

	reply, err := sess.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply.Text())

	// system prompt + user + assistant
	assert.Equal(t, 3, sess.Chat().Len())

	got, ok := e.Session(sess.ID())
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestSessionSendClampsInput(t *testing.T) {
	fake := &fakeOpenAI{t: t, responses: []string{textResponse("ok")}}
	e := newEngine(t, fake, nil)

	sess, err := e.NewSession("")
	require.NoError(t, err)

	_, err = sess.Send(context.Background(), strings.Repeat("a", maxInputChars+500))
	require.NoError(t, err)

	msgs := fake.requests[0]["messages"].([]any)
	userContent := msgs[1].(map[string]any)["content"].(string)
	assert.Len(t, userContent, maxInputChars)
}

func TestClampInputKeepsRunesIntact(t *testing.T) {
	// A multi-byte rune straddling the limit must be dropped whole, not
	// split into a dangling continuation byte.
	text := strings.Repeat("a", maxInputChars-1) + "é" + strings.Repeat("b", 500)

	got := clampInput(text)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxInputChars-1), got)

	assert.Equal(t, "short", clampInput("short"))
}

func TestSessionSendPublishesEvents(t *testing.T) {
	fake := &fakeOpenAI{t: t, responses: []string{textResponse("done")}}
	e := newEngine(t, fake, nil)

	sub := e.Events().Subscribe(8)
	defer e.Events().Unsubscribe(sub)

	sess, err := e.NewSession("")
	require.NoError(t, err)

	_, err = sess.Send(context.Background(), "go")
	require.NoError(t, err)

	var kinds []EventKind
	for range 2 {
		kinds = append(kinds, (<-sub.C).Kind)
	}
	assert.Equal(t, []EventKind{EventAgentStart, EventAgentEnd}, kinds)
}

func TestDelegationRunsSubAgent(t *testing.T) {
	fake := &fakeOpenAI{t: t, responses: []string{
		toolCallResponse("researcher", `{"task":"find grafana alternatives"}`),
		textResponse("SigNoz looks promising"),
		textResponse("The researcher suggests SigNoz"),
	}}

	e := newEngine(t, fake, func(cfg *Config) {
		cfg.Agents = []AgentConfig{
			{
				Name:         "lead",
				Provider:     "main",
				Instructions: "Coordinate the team.",
				Delegates:    []string{"researcher"},
			},
			{
				Name:         "researcher",
				Provider:     "main",
				Description:  "Researches developer tools",
				Instructions: "Research tools.",
			},
		}
		cfg.EntryAgent = "lead"
	})

	sub := e.Events().Subscribe(16)
	defer e.Events().Unsubscribe(sub)

	sess, err := e.NewSession("lead")
	require.NoError(t, err)

	reply, err := sess.Send(context.Background(), "what should we use instead of grafana?")
	require.NoError(t, err)
	assert.Equal(t, "The researcher suggests SigNoz", reply.Text())

	// The lead declared the researcher as a tool.
	tools := fake.requests[0]["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "researcher", fn["name"])
	assert.Equal(t, "Researches developer tools", fn["description"])

	// The delegated task reached the sub-agent's private chat.
	subMsgs := fake.requests[1]["messages"].([]any)
	lastSub := subMsgs[len(subMsgs)-1].(map[string]any)
	assert.Equal(t, "find grafana alternatives", lastSub["content"])

	// Tool call events carried the delegate's name.
	var sawToolStart, sawToolEnd bool
	for range 4 {
		ev := <-sub.C
		switch ev.Kind {
		case EventToolCallStart:
			sawToolStart = ev.Tool == "researcher"
		case EventToolCallEnd:
			sawToolEnd = ev.Tool == "researcher"
		}
	}
	assert.True(t, sawToolStart)
	assert.True(t, sawToolEnd)
}

func TestDelegationCycleRejected(t *testing.T) {
	fake := &fakeOpenAI{t: t}

	e := newEngine(t, fake, func(cfg *Config) {
		cfg.Agents = []AgentConfig{
			{Name: "a", Provider: "main", Delegates: []string{"b"}},
			{Name: "b", Provider: "main", Delegates: []string{"a"}},
		}
		cfg.EntryAgent = "a"
	})

	_, err := e.NewSession("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delegation cycle")
}

func TestNewResearchWorkflow(t *testing.T) {
	fake := &fakeOpenAI{t: t}

	e := newEngine(t, fake, func(cfg *Config) {
		cfg.Research = ResearchConfig{
			Provider:        "main",
			AnalystModel:    "gpt-4o-mini",
			FirecrawlAPIKey: "fc-test",
		}
	})

	w, err := e.NewResearchWorkflow(nil)
	require.NoError(t, err)
	assert.NotNil(t, w)
}

func TestNewResearchWorkflowRequiresFirecrawlKey(t *testing.T) {
	fake := &fakeOpenAI{t: t}
	e := newEngine(t, fake, nil)

	_, err := e.NewResearchWorkflow(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firecrawl_api_key")
}

func TestSessionSingleFlight(t *testing.T) {
	fake := &fakeOpenAI{t: t, responses: []string{textResponse("ok")}}
	e := newEngine(t, fake, nil)

	sess, err := e.NewSession("")
	require.NoError(t, err)

	require.NoError(t, sess.acquire())

	_, err = sess.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")

	sess.release()

	_, err = sess.Send(context.Background(), "hi")
	require.NoError(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestToolNames(t *testing.T) {
	fake := &fakeOpenAI{t: t}
	e := newEngine(t, fake, nil)

	assert.Empty(t, e.ToolNames())

	web := toolbox.New()
	web.Register(
		toolbox.Tool{Name: "firecrawl_search"},
		toolbox.Tool{Name: "firecrawl_scrape"},
	)
	e.toolboxes["firecrawl"] = web

	assert.Equal(t, []string{"firecrawl_scrape", "firecrawl_search"}, e.ToolNames())
}
