package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level engine configuration, usually loaded from
// .sleuth/config.yaml.
type Config struct {
	Providers  []ProviderConfig `yaml:"providers"`
	MCPServers []MCPConfig      `yaml:"mcp_servers"`
	Agents     []AgentConfig    `yaml:"agents"`
	EntryAgent string           `yaml:"entry_agent"`
	Research   ResearchConfig   `yaml:"research"`
}

// ProviderConfig describes one LLM provider instance.
type ProviderConfig struct {
	Name        string      `yaml:"name"`
	Kind        string      `yaml:"kind"` // "openai" or "anthropic"
	BaseURL     string      `yaml:"base_url"`
	APIKey      string      `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model       string      `yaml:"model"`
	Temperature float64     `yaml:"temperature"`
	MaxTokens   int         `yaml:"max_tokens"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig controls 429 retry behaviour per provider.
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries"` // Max retries on 429 (default 3).
	BaseDelay  string `yaml:"base_delay"`  // Initial backoff as a duration string (e.g. "1s").
}

// baseDelay parses BaseDelay, returning zero (meaning: use the default) when
// unset or unparseable.
func (r RetryConfig) baseDelay() time.Duration {
	d, err := time.ParseDuration(r.BaseDelay)
	if err != nil {
		return 0
	}
	return d
}

// MCPConfig describes an MCP server to spawn and connect to.
type MCPConfig struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Env     []string `yaml:"env"` // KEY=VALUE entries added to the server's environment.
}

// AgentConfig describes an agent to register. Delegates name other agents
// from this config; each is exposed to this agent as a callable tool.
type AgentConfig struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Instructions  string   `yaml:"instructions"`
	Provider      string   `yaml:"provider"`
	Toolboxes     []string `yaml:"toolboxes"`
	Delegates     []string `yaml:"delegates"`
	MaxIterations int      `yaml:"max_iterations"`
}

// ResearchConfig configures the research workflow command.
type ResearchConfig struct {
	Provider         string `yaml:"provider"`           // Provider name for free-text steps.
	AnalystModel     string `yaml:"analyst_model"`      // Model for structured analysis (default: the provider's model).
	FirecrawlAPIKey  string `yaml:"firecrawl_api_key"`  //nolint:gosec // configuration field
	FirecrawlBaseURL string `yaml:"firecrawl_base_url"` // Defaults to the hosted API.
}

// LoadConfig reads a YAML config file. ${VAR} and $VAR references are
// expanded from the environment first, so API keys stay in .env files
// instead of the committed config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("engine: config: at least one provider is required")
	}

	providers := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("engine: config: provider name is required")
		}
		switch p.Kind {
		case "openai", "anthropic":
		case "":
			return fmt.Errorf("engine: config: provider %q: kind is required", p.Name)
		default:
			return fmt.Errorf("engine: config: provider %q: unknown kind %q", p.Name, p.Kind)
		}
		if _, dup := providers[p.Name]; dup {
			return fmt.Errorf("engine: config: duplicate provider name %q", p.Name)
		}
		providers[p.Name] = struct{}{}
	}

	mcps := make(map[string]struct{}, len(c.MCPServers))
	for _, m := range c.MCPServers {
		if m.Name == "" {
			return fmt.Errorf("engine: config: mcp server name is required")
		}
		if m.Command == "" {
			return fmt.Errorf("engine: config: mcp server %q: command is required", m.Name)
		}
		if _, dup := mcps[m.Name]; dup {
			return fmt.Errorf("engine: config: duplicate mcp server name %q", m.Name)
		}
		mcps[m.Name] = struct{}{}
	}

	if len(c.Agents) == 0 {
		return fmt.Errorf("engine: config: at least one agent is required")
	}

	agents := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("engine: config: agent name is required")
		}
		if _, dup := agents[a.Name]; dup {
			return fmt.Errorf("engine: config: duplicate agent name %q", a.Name)
		}
		agents[a.Name] = struct{}{}

		if _, ok := providers[a.Provider]; !ok {
			return fmt.Errorf("engine: config: agent %q: unknown provider %q", a.Name, a.Provider)
		}
		for _, tb := range a.Toolboxes {
			if _, ok := mcps[tb]; !ok {
				return fmt.Errorf("engine: config: agent %q: unknown toolbox %q", a.Name, tb)
			}
		}
	}

	// Delegates can only be validated once all agents are known.
	for _, a := range c.Agents {
		for _, d := range a.Delegates {
			if d == a.Name {
				return fmt.Errorf("engine: config: agent %q delegates to itself", a.Name)
			}
			if _, ok := agents[d]; !ok {
				return fmt.Errorf("engine: config: agent %q: unknown delegate %q", a.Name, d)
			}
		}
	}

	if c.EntryAgent != "" {
		if _, ok := agents[c.EntryAgent]; !ok {
			return fmt.Errorf("engine: config: unknown entry agent %q", c.EntryAgent)
		}
	}

	if c.Research.Provider != "" {
		if _, ok := providers[c.Research.Provider]; !ok {
			return fmt.Errorf("engine: config: research: unknown provider %q", c.Research.Provider)
		}
	}

	return nil
}

// agentConfig returns the named agent config, defaulting to EntryAgent and
// then the first agent when name is empty.
func (c Config) agentConfig(name string) (AgentConfig, error) {
	if name == "" {
		name = c.EntryAgent
	}
	if name == "" && len(c.Agents) > 0 {
		return c.Agents[0], nil
	}

	for _, a := range c.Agents {
		if a.Name == name {
			return a, nil
		}
	}

	return AgentConfig{}, fmt.Errorf("engine: unknown agent %q", name)
}
