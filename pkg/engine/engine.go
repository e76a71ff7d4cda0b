// Package engine is the composition root. It assembles providers, MCP
// toolboxes, agents, and the research workflow from configuration, and
// exposes sessions and events through a frontend-agnostic API.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avelez/sleuth/pkg/agents"
	"github.com/avelez/sleuth/pkg/agents/delegate"
	"github.com/avelez/sleuth/pkg/agents/react"
	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/avelez/sleuth/pkg/firecrawl"
	"github.com/avelez/sleuth/pkg/modeladapter"
	"github.com/avelez/sleuth/pkg/providers/anthropic"
	"github.com/avelez/sleuth/pkg/providers/openai"
	"github.com/avelez/sleuth/pkg/research"
	"github.com/avelez/sleuth/pkg/tools/mcpclient"
	"github.com/avelez/sleuth/pkg/tools/toolbox"
	"github.com/google/uuid"
)

const (
	defaultOpenAIBaseURL    = "https://api.openai.com"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
)

// Engine holds everything built from a Config.
type Engine struct {
	cfg        Config
	events     *EventBus
	completers map[string]modeladapter.Completer
	toolboxes  map[string]*toolbox.ToolBox
	mcpClients []*mcpclient.Client

	mu       sync.Mutex
	sessions map[string]*Session
}

// New builds an Engine from cfg: validates it, constructs provider
// completers, and connects the configured MCP servers.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		events:     NewEventBus(),
		completers: make(map[string]modeladapter.Completer, len(cfg.Providers)),
		toolboxes:  make(map[string]*toolbox.ToolBox, len(cfg.MCPServers)),
		sessions:   make(map[string]*Session),
	}

	for _, pc := range cfg.Providers {
		c, err := buildCompleter(pc)
		if err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}
		e.completers[pc.Name] = c
	}

	for _, mc := range cfg.MCPServers {
		client, err := mcpclient.New(ctx, mc.Command, mc.Args, mc.Env)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("engine: mcp %q: %w", mc.Name, err)
		}
		e.mcpClients = append(e.mcpClients, client)

		tools, err := client.ListTools(ctx)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("engine: mcp %q: list tools: %w", mc.Name, err)
		}

		tb := toolbox.New()
		tb.Register(tools...)
		e.toolboxes[mc.Name] = tb
	}

	return e, nil
}

// Events returns the engine's event bus.
func (e *Engine) Events() *EventBus { return e.events }

// ToolNames returns the sorted names of every tool connected from the
// configured MCP servers.
func (e *Engine) ToolNames() []string {
	var names []string
	for _, tb := range e.toolboxes {
		for _, t := range tb.Tools() {
			names = append(names, t.Name)
		}
	}
	sort.Strings(names)

	return names
}

// NewSession builds the named agent (empty means the configured entry agent)
// and wraps it in a fresh Session.
func (e *Engine) NewSession(agentName string) (*Session, error) {
	id := uuid.NewString()

	agent, err := e.buildAgent(agentName, id, nil)
	if err != nil {
		return nil, err
	}

	sess := newSession(id, agent, e.events)

	e.mu.Lock()
	e.sessions[id] = sess
	e.mu.Unlock()

	return sess, nil
}

// Session returns a previously created session by ID.
func (e *Engine) Session(id string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[id]
	return s, ok
}

// NewResearchWorkflow wires the research pipeline from the research section
// of the config. progress may be nil.
func (e *Engine) NewResearchWorkflow(progress research.ProgressFunc) (*research.Workflow, error) {
	rc := e.cfg.Research

	if rc.FirecrawlAPIKey == "" {
		return nil, errors.New("engine: research: firecrawl_api_key is required")
	}

	var opts []firecrawl.Option
	if rc.FirecrawlBaseURL != "" {
		opts = append(opts, firecrawl.WithBaseURL(rc.FirecrawlBaseURL))
	}

	fc, err := firecrawl.New(rc.FirecrawlAPIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("engine: research: %w", err)
	}

	pc, err := e.researchProvider()
	if err != nil {
		return nil, err
	}

	llm := e.completers[pc.Name]
	analyst := buildAnalyst(pc, rc.AnalystModel, llm)

	return research.NewWorkflow(llm, analyst, research.NewService(fc), progress), nil
}

// researchProvider resolves the provider powering the research workflow,
// defaulting to the first configured provider.
func (e *Engine) researchProvider() (ProviderConfig, error) {
	if e.cfg.Research.Provider == "" {
		return e.cfg.Providers[0], nil
	}

	for _, pc := range e.cfg.Providers {
		if pc.Name == e.cfg.Research.Provider {
			return pc, nil
		}
	}

	return ProviderConfig{}, fmt.Errorf("engine: research: unknown provider %q", e.cfg.Research.Provider)
}

// Close shuts down all MCP clients. The first error wins.
func (e *Engine) Close() error {
	var firstErr error
	for _, c := range e.mcpClients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// buildAgent constructs the named agent with its toolboxes and delegates.
// seen guards against delegation cycles in the config.
func (e *Engine) buildAgent(name, sessionID string, seen map[string]bool) (agents.NamedAgent, error) {
	ac, err := e.cfg.agentConfig(name)
	if err != nil {
		return nil, err
	}

	if seen == nil {
		seen = make(map[string]bool)
	}
	if seen[ac.Name] {
		return nil, fmt.Errorf("engine: delegation cycle through agent %q", ac.Name)
	}
	seen[ac.Name] = true
	defer delete(seen, ac.Name)

	c := chat.New()
	if ac.Instructions != "" {
		c.Append(message.NewText("", role.System, ac.Instructions))
	}

	// All of the agent's tools live in one merged box so later sources win
	// on name clashes.
	box := toolbox.New()
	for _, tbName := range ac.Toolboxes {
		tb, ok := e.toolboxes[tbName]
		if !ok {
			return nil, fmt.Errorf("engine: agent %q: unknown toolbox %q", ac.Name, tbName)
		}
		box.Merge(tb)
	}

	for _, dName := range ac.Delegates {
		sub, err := e.buildAgent(dName, sessionID, seen)
		if err != nil {
			return nil, err
		}

		dc, _ := e.cfg.agentConfig(dName)
		box.Register(delegate.New(sub, dc.Description).Tool())
	}

	var tbs []*toolbox.ToolBox
	if len(box.Tools()) > 0 {
		tbs = append(tbs, e.instrument(box, ac.Name, sessionID))
	}

	completer, ok := e.completers[ac.Provider]
	if !ok {
		return nil, fmt.Errorf("engine: agent %q: unknown provider %q", ac.Name, ac.Provider)
	}

	base := agents.NewBase(ac.Name, completer, c, tbs...)

	return react.New(base, react.Options{MaxIterations: ac.MaxIterations}), nil
}

// instrument wraps every tool in tb so calls publish start/end events.
func (e *Engine) instrument(tb *toolbox.ToolBox, agentName, sessionID string) *toolbox.ToolBox {
	out := toolbox.New()

	for _, t := range tb.Tools() {
		tool := t
		inner := tool.Handler
		tool.Handler = func(ctx context.Context, input json.RawMessage) (string, error) {
			e.events.Publish(Event{
				Kind:      EventToolCallStart,
				SessionID: sessionID,
				Agent:     agentName,
				Tool:      tool.Name,
				Timestamp: time.Now(),
				Data:      string(input),
			})

			result, err := inner(ctx, input)

			data := result
			if err != nil {
				data = err.Error()
			}
			e.events.Publish(Event{
				Kind:      EventToolCallEnd,
				SessionID: sessionID,
				Agent:     agentName,
				Tool:      tool.Name,
				Timestamp: time.Now(),
				Data:      data,
			})

			return result, err
		}
		out.Register(tool)
	}

	return out
}

// buildCompleter constructs a provider adapter and wraps it with 429 retry.
func buildCompleter(pc ProviderConfig) (modeladapter.Completer, error) {
	var inner modeladapter.Completer

	switch pc.Kind {
	case "openai":
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		a := openai.New(baseURL, pc.APIKey, pc.Model)
		a.Temperature = pc.Temperature
		if pc.MaxTokens > 0 {
			a.MaxTokens = pc.MaxTokens
		}
		inner = a

	case "anthropic":
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = defaultAnthropicBaseURL
		}
		a := anthropic.New(baseURL, pc.APIKey, pc.Model)
		a.Temperature = pc.Temperature
		if pc.MaxTokens > 0 {
			a.MaxTokens = pc.MaxTokens
		}
		inner = a

	default:
		return nil, fmt.Errorf("unknown provider kind %q", pc.Kind)
	}

	return modeladapter.NewRetryCompleter(inner, modeladapter.RetryOpts{
		MaxRetries: pc.Retry.MaxRetries,
		BaseDelay:  pc.Retry.baseDelay(),
	}), nil
}

// buildAnalyst returns the completer for structured analysis calls. OpenAI
// kinds get a dedicated adapter with the analysis schema as response_format;
// other kinds reuse the free-text completer and rely on prompting.
func buildAnalyst(pc ProviderConfig, analystModel string, fallback modeladapter.Completer) modeladapter.Completer {
	if pc.Kind != "openai" {
		return fallback
	}

	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	model := analystModel
	if model == "" {
		model = pc.Model
	}

	a := openai.New(baseURL, pc.APIKey, model)
	a.Temperature = 0.1
	a.ResponseSchema = research.AnalysisSchema
	a.ResponseSchemaName = "company_analysis"

	return modeladapter.NewRetryCompleter(a, modeladapter.RetryOpts{
		MaxRetries: pc.Retry.MaxRetries,
		BaseDelay:  pc.Retry.baseDelay(),
	})
}
