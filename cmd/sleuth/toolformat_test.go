package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatToolCall_Firecrawl(t *testing.T) {
	assert.Equal(t, `Searching the web for "grafana alternatives"`,
		formatToolCall("firecrawl_search", `{"query":"grafana alternatives"}`))

	assert.Equal(t, `Reading "https://signoz.io"`,
		formatToolCall("firecrawl_scrape", `{"url":"https://signoz.io"}`))
}

func TestFormatToolCall_Delegate(t *testing.T) {
	got := formatToolCall("researcher", `{"task":"compare pricing"}`)
	assert.Equal(t, `Asking researcher to "compare pricing"`, got)
}

func TestFormatToolCall_Unknown(t *testing.T) {
	assert.Equal(t, `Calling mystery_tool {"x":1}`, formatToolCall("mystery_tool", `{"x":1}`))
	assert.Equal(t, "Calling mystery_tool", formatToolCall("mystery_tool", ""))
}

func TestFormatToolCall_TruncatesLongArgs(t *testing.T) {
	long := `{"query":"` + strings.Repeat("a", 100) + `"}`
	got := formatToolCall("firecrawl_search", long)
	assert.Contains(t, got, "...")
}
