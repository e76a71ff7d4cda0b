package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"
)

type wizardProvider struct {
	Kind       string
	Name       string
	APIKey     string //nolint:gosec // env var reference, not a secret
	Model      string
	MaxRetries string
	BaseDelay  string
}

type wizardConfig struct {
	Provider        wizardProvider
	Layout          string // "solo" or "team"
	Instructions    string
	UseFirecrawl    bool
	FirecrawlKeyRef string //nolint:gosec // env var reference, not a secret
}

type providerDefault struct {
	APIKey string //nolint:gosec // env var reference template, not a secret
	Model  string
}

//nolint:gosec // env var reference templates, not hardcoded secrets
var providerDefaults = map[string]providerDefault{
	"anthropic": {APIKey: "${ANTHROPIC_API_KEY}", Model: "claude-sonnet-4-20250514"},
	"openai":    {APIKey: "${OPENAI_API_KEY}", Model: "gpt-4o-mini"},
}

func runWizard() ([]byte, error) {
	cfg := wizardConfig{
		Layout:          "solo",
		Instructions:    "You are a helpful assistant that researches developer tools. Use the available web tools to ground your answers.",
		UseFirecrawl:    true,
		FirecrawlKeyRef: "${FIRECRAWL_API_KEY}",
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Provider kind").
			Options(
				huh.NewOption("OpenAI", "openai"),
				huh.NewOption("Anthropic", "anthropic"),
			).
			Value(&cfg.Provider.Kind),
	)).Run(); err != nil {
		return nil, err
	}

	defaults := providerDefaults[cfg.Provider.Kind]
	cfg.Provider.Name = cfg.Provider.Kind
	cfg.Provider.APIKey = defaults.APIKey
	cfg.Provider.Model = defaults.Model
	cfg.Provider.MaxRetries = "3"
	cfg.Provider.BaseDelay = "1s"

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Provider name").Value(&cfg.Provider.Name),
		huh.NewInput().Title("API key env var").Value(&cfg.Provider.APIKey),
		huh.NewInput().Title("Model").Value(&cfg.Provider.Model),
		huh.NewInput().Title("Max retries on 429").Value(&cfg.Provider.MaxRetries).Validate(validateNonNegativeInt),
	)).Run(); err != nil {
		return nil, err
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Agent layout").
			Options(
				huh.NewOption("Single assistant", "solo"),
				huh.NewOption("Research team (lead + researcher + analyst)", "team"),
			).
			Value(&cfg.Layout),
		huh.NewConfirm().Title("Enable firecrawl web tools?").Value(&cfg.UseFirecrawl),
	)).Run(); err != nil {
		return nil, err
	}

	if cfg.Layout == "solo" {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Instructions").Value(&cfg.Instructions),
		)).Run(); err != nil {
			return nil, err
		}
	}

	return marshalWizardConfig(cfg)
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}

	return nil
}

// YAML output types.

type configYAML struct {
	Providers  []providerYAML `yaml:"providers"`
	MCPServers []mcpYAML      `yaml:"mcp_servers,omitempty"`
	Agents     []agentYAML    `yaml:"agents"`
	EntryAgent string         `yaml:"entry_agent"`
	Research   *researchYAML  `yaml:"research,omitempty"`
}

type providerYAML struct {
	Name   string     `yaml:"name"`
	Kind   string     `yaml:"kind"`
	APIKey string     `yaml:"api_key"` //nolint:gosec // env var reference, not a secret
	Model  string     `yaml:"model"`
	Retry  *retryYAML `yaml:"retry,omitempty"`
}

type retryYAML struct {
	MaxRetries int    `yaml:"max_retries,omitempty"`
	BaseDelay  string `yaml:"base_delay,omitempty"`
}

type mcpYAML struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Env     []string `yaml:"env,omitempty"`
}

type agentYAML struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description,omitempty"`
	Instructions  string   `yaml:"instructions"`
	Provider      string   `yaml:"provider"`
	Toolboxes     []string `yaml:"toolboxes,omitempty"`
	Delegates     []string `yaml:"delegates,omitempty"`
	MaxIterations int      `yaml:"max_iterations,omitempty"`
}

type researchYAML struct {
	Provider        string `yaml:"provider"`
	FirecrawlAPIKey string `yaml:"firecrawl_api_key"` //nolint:gosec // env var reference, not a secret
}

func marshalWizardConfig(cfg wizardConfig) ([]byte, error) {
	maxRetries, _ := strconv.Atoi(cfg.Provider.MaxRetries)

	yc := configYAML{
		Providers: []providerYAML{{
			Name:   cfg.Provider.Name,
			Kind:   cfg.Provider.Kind,
			APIKey: cfg.Provider.APIKey,
			Model:  cfg.Provider.Model,
		}},
	}

	if maxRetries > 0 {
		yc.Providers[0].Retry = &retryYAML{MaxRetries: maxRetries, BaseDelay: cfg.Provider.BaseDelay}
	}

	var toolboxes []string
	if cfg.UseFirecrawl {
		yc.MCPServers = []mcpYAML{{
			Name:    "firecrawl",
			Command: "npx",
			Args:    []string{"-y", "firecrawl-mcp"},
			Env:     []string{"FIRECRAWL_API_KEY=" + cfg.FirecrawlKeyRef},
		}}
		yc.Research = &researchYAML{
			Provider:        cfg.Provider.Name,
			FirecrawlAPIKey: cfg.FirecrawlKeyRef,
		}
		toolboxes = []string{"firecrawl"}
	}

	switch cfg.Layout {
	case "team":
		yc.Agents = teamAgents(cfg.Provider.Name, toolboxes)
		yc.EntryAgent = "lead"
	default:
		yc.Agents = []agentYAML{{
			Name:         "assistant",
			Instructions: cfg.Instructions,
			Provider:     cfg.Provider.Name,
			Toolboxes:    toolboxes,
		}}
		yc.EntryAgent = "assistant"
	}

	return yaml.Marshal(yc)
}

// teamAgents is the multi-agent template: a lead that delegates to a web
// researcher and an analyst.
func teamAgents(provider string, toolboxes []string) []agentYAML {
	return []agentYAML{
		{
			Name: "lead",
			Instructions: "You coordinate a developer-tools research team. Break the user's question into tasks, " +
				"delegate web research to the researcher and evaluation to the analyst, then synthesize a final answer.",
			Provider:  provider,
			Delegates: []string{"researcher", "analyst"},
		},
		{
			Name:         "researcher",
			Description:  "Searches the web and reads pages to gather facts about developer tools",
			Instructions: "You research developer tools on the web. Return concise, sourced facts.",
			Provider:     provider,
			Toolboxes:    toolboxes,
		},
		{
			Name:         "analyst",
			Description:  "Evaluates gathered facts and compares tools on pricing, openness, and integrations",
			Instructions: "You compare developer tools. Weigh pricing, open-source status, API availability, and integrations.",
			Provider:     provider,
		},
	}
}
