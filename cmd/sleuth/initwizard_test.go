package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/avelez/sleuth/pkg/engine"
)

func soloWizardConfig() wizardConfig {
	return wizardConfig{
		Provider: wizardProvider{
			Kind:       "openai",
			Name:       "openai",
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "gpt-4o-mini",
			MaxRetries: "3",
			BaseDelay:  "1s",
		},
		Layout:          "solo",
		Instructions:    "Be helpful.",
		UseFirecrawl:    true,
		FirecrawlKeyRef: "${FIRECRAWL_API_KEY}",
	}
}

func TestMarshalWizardConfig_Solo(t *testing.T) {
	data, err := marshalWizardConfig(soloWizardConfig())
	require.NoError(t, err)

	var cfg engine.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Agents, 1)
	assert.Equal(t, "assistant", cfg.Agents[0].Name)
	assert.Equal(t, []string{"firecrawl"}, cfg.Agents[0].Toolboxes)
	assert.Equal(t, "assistant", cfg.EntryAgent)

	require.Len(t, cfg.MCPServers, 1)
	assert.Equal(t, "npx", cfg.MCPServers[0].Command)
	assert.Contains(t, cfg.MCPServers[0].Env, "FIRECRAWL_API_KEY=${FIRECRAWL_API_KEY}")

	assert.Equal(t, 3, cfg.Providers[0].Retry.MaxRetries)
	assert.Equal(t, "${FIRECRAWL_API_KEY}", cfg.Research.FirecrawlAPIKey)
}

func TestMarshalWizardConfig_Team(t *testing.T) {
	wc := soloWizardConfig()
	wc.Layout = "team"

	data, err := marshalWizardConfig(wc)
	require.NoError(t, err)

	var cfg engine.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Agents, 3)
	assert.Equal(t, "lead", cfg.EntryAgent)
	assert.Equal(t, []string{"researcher", "analyst"}, cfg.Agents[0].Delegates)
	assert.Equal(t, []string{"firecrawl"}, cfg.Agents[1].Toolboxes)
}

func TestMarshalWizardConfig_NoFirecrawl(t *testing.T) {
	wc := soloWizardConfig()
	wc.UseFirecrawl = false

	data, err := marshalWizardConfig(wc)
	require.NoError(t, err)

	var cfg engine.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.MCPServers)
	assert.Empty(t, cfg.Agents[0].Toolboxes)
	assert.Empty(t, cfg.Research.FirecrawlAPIKey)
}
