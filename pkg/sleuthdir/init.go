package sleuthdir

import (
	"fmt"
	"os"
)

const gitignoreContent = "local/\n"

const configSkeleton = `providers:
  - name: openai
    kind: openai
    model: gpt-4o-mini
    api_key: ${OPENAI_API_KEY}

mcp_servers:
  - name: firecrawl
    command: npx
    args: ["-y", "firecrawl-mcp"]
    env:
      - FIRECRAWL_API_KEY=${FIRECRAWL_API_KEY}

agents:
  - name: assistant
    provider: openai
    instructions: >
      You are a helpful assistant that researches developer tools.
      Use the available web tools to ground your answers.
    toolboxes: [firecrawl]

entry_agent: assistant

research:
  provider: openai
  firecrawl_api_key: ${FIRECRAWL_API_KEY}
`

// Bootstrap creates a .sleuth/ directory from scratch: the root, the reports
// and local directories, a .gitignore, and a skeleton config.yaml. Existing
// files are never overwritten.
func Bootstrap(d Dir) error {
	if err := os.MkdirAll(d.Root(), 0o750); err != nil {
		return fmt.Errorf("sleuthdir: create root: %w", err)
	}

	if err := os.MkdirAll(d.ReportsDir(), 0o750); err != nil {
		return fmt.Errorf("sleuthdir: create reports dir: %w", err)
	}

	if err := EnsureStructure(d); err != nil {
		return err
	}

	return ensureConfig(d)
}

// BootstrapWithConfig is Bootstrap with caller-provided config content, used
// by the init wizard. An existing config file is never overwritten.
func BootstrapWithConfig(d Dir, configYAML []byte) error {
	if err := os.MkdirAll(d.Root(), 0o750); err != nil {
		return fmt.Errorf("sleuthdir: create root: %w", err)
	}

	if err := os.MkdirAll(d.ReportsDir(), 0o750); err != nil {
		return fmt.Errorf("sleuthdir: create reports dir: %w", err)
	}

	if err := EnsureStructure(d); err != nil {
		return err
	}

	if _, err := os.Stat(d.ConfigPath()); err == nil {
		return nil
	}

	if err := os.WriteFile(d.ConfigPath(), configYAML, 0o600); err != nil {
		return fmt.Errorf("sleuthdir: write config: %w", err)
	}

	return nil
}

// EnsureStructure creates the local/ directory and .gitignore file if they are
// missing. It is safe to call multiple times (idempotent). It does NOT create
// the .sleuth/ root itself — the caller decides whether to bootstrap from
// scratch or only set up an existing directory.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.LocalDir(), 0o750); err != nil {
		return fmt.Errorf("sleuthdir: create local dir: %w", err)
	}

	if err := ensureGitignore(d); err != nil {
		return fmt.Errorf("sleuthdir: gitignore: %w", err)
	}

	return nil
}

// ensureGitignore creates the .gitignore file if it does not exist.
func ensureGitignore(d Dir) error {
	path := d.GitignorePath()

	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}

	return os.WriteFile(path, []byte(gitignoreContent), 0o600)
}

// ensureConfig writes the skeleton config if no config file exists yet.
func ensureConfig(d Dir) error {
	path := d.ConfigPath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configSkeleton), 0o600); err != nil {
		return fmt.Errorf("sleuthdir: write config: %w", err)
	}

	return nil
}
