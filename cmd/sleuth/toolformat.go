package main

import (
	"encoding/json"
	"fmt"
)

// toolFormatter produces a human-readable label from parsed tool arguments.
type toolFormatter func(str func(string) string) string

// toolFormatters maps known tool names to their human-readable formatters.
// Firecrawl names match the firecrawl-mcp server; delegate calls are the
// agent's own name and fall through to the generic case.
var toolFormatters = map[string]toolFormatter{
	"firecrawl_search": func(s func(string) string) string {
		return fmt.Sprintf("Searching the web for %q", truncate(s("query"), 60))
	},
	"firecrawl_scrape": func(s func(string) string) string {
		return fmt.Sprintf("Reading %q", truncate(s("url"), 80))
	},
	"firecrawl_map": func(s func(string) string) string {
		return fmt.Sprintf("Mapping site %q", truncate(s("url"), 80))
	},
	"firecrawl_crawl": func(s func(string) string) string {
		return fmt.Sprintf("Crawling %q", truncate(s("url"), 80))
	},
	"firecrawl_extract": func(s func(string) string) string {
		return fmt.Sprintf("Extracting data from %q", truncate(s("urls"), 80))
	},
}

// formatToolCall returns a human-readable description of a tool invocation.
func formatToolCall(toolName, argsJSON string) string {
	var args map[string]any
	if argsJSON != "" {
		_ = json.Unmarshal([]byte(argsJSON), &args)
	}

	str := func(key string) string {
		if v, ok := args[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}

	if fn, ok := toolFormatters[toolName]; ok {
		return fn(str)
	}

	// Delegate calls carry a "task" argument.
	if task := str("task"); task != "" {
		return fmt.Sprintf("Asking %s to %q", toolName, truncate(task, 60))
	}

	// Unknown / MCP tools show name + truncated args.
	if argsJSON != "" {
		return fmt.Sprintf("Calling %s %s", toolName, truncate(argsJSON, 80))
	}
	return fmt.Sprintf("Calling %s", toolName)
}
